package extract

import (
	"testing"

	"fapiao/pkg/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// fakePage serves fixed text per region box
type fakePage map[[4]float64]string

func (p fakePage) Region(x0, top, x1, bottom float64) string {
	return p[[4]float64{x0, top, x1, bottom}]
}

func newTestExtractor() *Extractor {
	return NewExtractor(zerolog.Nop(), nil)
}

const digitalInvoice = `电子发票（普通发票）
发票号码：24312000000123456789
开票日期：2024年03月15日
购 名称：上海甲乙科技有限公司
买 统一社会信用代码/纳税人识别号：91310000MA1XXXXX
销 名称：北京丙丁咨询有限公司
售 统一社会信用代码/纳税人识别号：91110000MA2YYYYY
价税合计（大写） 壹佰零陆圆整 （小写）¥106.00`

func TestChainRunFirstAcceptedWins(t *testing.T) {
	var laterCalls int
	chain := Chain{
		Field: "test",
		Strategies: []Strategy{
			{Name: "miss", Find: func(*Input) (string, bool) { return "", false }},
			{Name: "invalid", Find: func(*Input) (string, bool) { return "bad", true }},
			{Name: "hit", Find: func(*Input) (string, bool) { return "good", true }},
			{Name: "later", Find: func(*Input) (string, bool) { laterCalls++; return "later", true }},
		},
		Check: func(v string) (string, Verdict) {
			if v == "bad" {
				return "", Reject
			}
			return v, Accept
		},
	}

	res := chain.Run(NewInput("", nil))
	if !res.Found || res.Value != "good" || res.Strategy != "hit" {
		t.Errorf("Run() = %+v", res)
	}
	if laterCalls != 0 {
		t.Errorf("strategy after the accepted one was called %d times", laterCalls)
	}
}

func TestChainRunProvisionalFallback(t *testing.T) {
	chain := Chain{
		Strategies: []Strategy{
			{Name: "first", Find: func(*Input) (string, bool) { return "p1", true }},
			{Name: "second", Find: func(*Input) (string, bool) { return "p2", true }},
		},
		Check: func(v string) (string, Verdict) { return v, Provisional },
	}

	res := chain.Run(NewInput("", nil))
	if res.Value != "p1" || res.Strategy != "first" {
		t.Errorf("Run() = %+v, want first provisional value", res)
	}
}

func TestExtractDigitalInvoice(t *testing.T) {
	out := newTestExtractor().Extract("digital.pdf", digitalInvoice, nil)
	rec := out.Record

	if rec.Filename != "digital.pdf" {
		t.Errorf("Filename = %q", rec.Filename)
	}
	if got := models.Deref(rec.InvoiceNo); got != "24312000000123456789" {
		t.Errorf("InvoiceNo = %q", got)
	}
	if got := models.Deref(rec.Date); got != "2024年03月15日" {
		t.Errorf("Date = %q", got)
	}
	if got := models.Deref(rec.Purchaser); got != "上海甲乙科技有限公司" {
		t.Errorf("Purchaser = %q", got)
	}
	if got := models.Deref(rec.Seller); got != "北京丙丁咨询有限公司" {
		t.Errorf("Seller = %q", got)
	}
	if rec.TotalAmount == nil || !rec.TotalAmount.Equal(decimal.RequireFromString("106")) {
		t.Errorf("TotalAmount = %v", rec.TotalAmount)
	}
	if len(out.Misses) != 0 {
		t.Errorf("Misses = %v", out.Misses)
	}

	want := map[string]string{
		models.FieldInvoiceNo:   "labeled",
		models.FieldDate:        "labeled",
		models.FieldPurchaser:   "flat-label",
		models.FieldSeller:      "flat-label",
		models.FieldTotalAmount: "numeric-label",
	}
	for field, strategy := range want {
		if out.Strategies[field] != strategy {
			t.Errorf("strategy for %s = %q, want %q", field, out.Strategies[field], strategy)
		}
	}
}

func TestExtractEmptyText(t *testing.T) {
	out := newTestExtractor().Extract("blank.pdf", "", nil)
	rec := out.Record
	if rec.Filename != "blank.pdf" {
		t.Errorf("Filename = %q", rec.Filename)
	}
	if rec.InvoiceNo != nil || rec.Date != nil || rec.Purchaser != nil || rec.Seller != nil || rec.TotalAmount != nil {
		t.Errorf("expected all-nil record, got %+v", rec)
	}
	if len(out.Misses) != 5 {
		t.Errorf("Misses = %v", out.Misses)
	}
}

func TestNumberChain(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		want         string
		wantStrategy string
	}{
		{
			name:         "labeled short number",
			text:         "发 票 号 码 ： 12345678",
			want:         "12345678",
			wantStrategy: "labeled",
		},
		{
			name:         "carrier statement account",
			text:         "中国移动对账单\n客户账号：1234567890\n集团编号：5550001",
			want:         "1234567890",
			wantStrategy: "customer-account",
		},
		{
			name:         "carrier statement group only",
			text:         "集团编号: 5550001",
			want:         "5550001",
			wantStrategy: "group-id",
		},
		{
			name:         "legacy code yields to monitor mark",
			text:         "发票号码:044001900111\n监 87654321\n",
			want:         "87654321",
			wantStrategy: "monitor-mark",
		},
		{
			name:         "legacy code kept when nothing better",
			text:         "发票号码:044001900111",
			want:         "044001900111",
			wantStrategy: "labeled",
		},
		{
			name:         "loose number skips year-like runs",
			text:         "Some text 20221017 and 12345678",
			want:         "12345678",
			wantStrategy: "loose-8-digit",
		},
		{
			name:         "twenty digits supersede a short number",
			text:         "号码:12345678\n校验码 98765432109876543210",
			want:         "98765432109876543210",
			wantStrategy: "twenty-digit",
		},
	}

	chain := NumberChain()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := NewInput(tt.text, nil)
			res := supersedeWithFullNumber(in, chain.Run(in))
			if !res.Found {
				t.Fatalf("no number found in %q", tt.text)
			}
			if res.Value != tt.want || res.Strategy != tt.wantStrategy {
				t.Errorf("got %q via %q, want %q via %q", res.Value, res.Strategy, tt.want, tt.wantStrategy)
			}
		})
	}
}

func TestNumberChainNothing(t *testing.T) {
	in := NewInput("no numbers 2023 here", nil)
	if res := supersedeWithFullNumber(in, NumberChain().Run(in)); res.Found {
		t.Errorf("unexpected number %+v", res)
	}
}

func TestDateChain(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		want         string
		wantStrategy string
	}{
		{name: "labeled cn", text: "开票日期：2022年10月17日", want: "2022年10月17日", wantStrategy: "labeled"},
		{name: "labeled slashes", text: "开票日期: 2023/06/30", want: "2023年06月30日", wantStrategy: "labeled"},
		{name: "labeled token runs on", text: "开票日期:2023-6-3校验码", want: "2023年06月03日", wantStrategy: "labeled"},
		{name: "spaced cn", text: "开 票 日 期 2022 年 10 月 17 日", want: "2022年10月17日", wantStrategy: "flat-cn"},
		{name: "compact", text: "日期 20230115 号", want: "2023年01月15日", wantStrategy: "compact-8-digit"},
		{name: "compact skips invalid month", text: "20231399 x 20230201", want: "2023年02月01日", wantStrategy: "compact-8-digit"},
		{name: "digit dna", text: "日期 2|0|2|3|0|5|0|6", want: "2023年05月06日", wantStrategy: "digit-dna"},
		{name: "older year", text: "日期1999年1月2日", want: "1999年01月02日", wantStrategy: "any-year-cn"},
	}

	chain := DateChain()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := chain.Run(NewInput(tt.text, nil))
			if !res.Found {
				t.Fatalf("no date found in %q", tt.text)
			}
			if res.Value != tt.want || res.Strategy != tt.wantStrategy {
				t.Errorf("got %q via %q, want %q via %q", res.Value, res.Strategy, tt.want, tt.wantStrategy)
			}
		})
	}
}

func TestDateLabelContext(t *testing.T) {
	got, ok := dateLabelContext(NewInput("开票日期: 第 2022 10 17", nil))
	if !ok || got != "2022年10月17日" {
		t.Errorf("dateLabelContext() = %q, %v", got, ok)
	}
}

func TestCheckDate(t *testing.T) {
	if v, verdict := checkDate("2022 10 17"); verdict != Accept || v != "2022年10月17日" {
		t.Errorf("checkDate(spaced) = %q, %v", v, verdict)
	}
	if _, verdict := checkDate("2022"); verdict != Reject {
		t.Error("short date accepted")
	}
	if _, verdict := checkDate("年月日年月日"); verdict != Reject {
		t.Error("digit-free date accepted")
	}
}

func TestDateOverride(t *testing.T) {
	e := newTestExtractor()

	out := e.Extract("拼多多商家电子发票-74.pdf", "发票号码:12345678", nil)
	if got := models.Deref(out.Record.Date); got != "2022年10月17日" {
		t.Errorf("Date = %q", got)
	}
	if out.Strategies[models.FieldDate] != "override" {
		t.Errorf("strategy = %q", out.Strategies[models.FieldDate])
	}

	custom := NewExtractor(zerolog.Nop(), map[string]string{"scan-01.pdf": "2021年05月01日"})
	out = custom.Extract("scan-01.pdf", "", nil)
	if got := models.Deref(out.Record.Date); got != "2021年05月01日" {
		t.Errorf("Date from config override = %q", got)
	}

	out = e.Extract("拼多多商家电子发票-74.pdf", "开票日期:2023-01-02", nil)
	if got := models.Deref(out.Record.Date); got != "2023年01月02日" {
		t.Errorf("override replaced an extracted date: %q", got)
	}
}

func TestPartiesPositionalLabels(t *testing.T) {
	text := "名称：华东机械制造有限公司\n名称：江南物流有限公司"
	out := newTestExtractor().Extract("paper.pdf", text, nil)

	if got := models.Deref(out.Record.Purchaser); got != "华东机械制造有限公司" {
		t.Errorf("Purchaser = %q", got)
	}
	if got := models.Deref(out.Record.Seller); got != "江南物流有限公司" {
		t.Errorf("Seller = %q", got)
	}
	if out.Strategies[models.FieldPurchaser] != "label-first" || out.Strategies[models.FieldSeller] != "label-second" {
		t.Errorf("strategies = %v", out.Strategies)
	}
}

func TestPartiesSpatial(t *testing.T) {
	page := fakePage{
		purchaserBox: "东海科技有限公司",
		sellerBox:    "东海科技有限公司",
		bottomBox:    "南山咨询有限公司\n西湖贸易有限公司",
	}
	out := newTestExtractor().Extract("spatial.pdf", "增值税电子普通发票", page)

	if got := models.Deref(out.Record.Purchaser); got != "东海科技有限公司" {
		t.Errorf("Purchaser = %q", got)
	}
	if got := models.Deref(out.Record.Seller); got != "南山咨询有限公司" {
		t.Errorf("Seller = %q", got)
	}
	if out.Strategies[models.FieldSeller] != "region-bottom" {
		t.Errorf("seller strategy = %q", out.Strategies[models.FieldSeller])
	}
}

func TestPartiesSpatialConsultingExclusion(t *testing.T) {
	page := fakePage{
		purchaserBox: "东海咨询有限公司",
		bottomBox:    "南山咨询有限公司\n西湖贸易有限公司",
	}
	out := newTestExtractor().Extract("spatial.pdf", "增值税电子普通发票", page)

	if got := models.Deref(out.Record.Seller); got != "西湖贸易有限公司" {
		t.Errorf("Seller = %q", got)
	}
}

func TestPartiesFlatCompanies(t *testing.T) {
	text := "开票方: 华南建材有限公司; 收票方: 华北钢铁有限公司"
	out := newTestExtractor().Extract("flat.pdf", text, nil)

	if got := models.Deref(out.Record.Purchaser); got != "华南建材有限公司" {
		t.Errorf("Purchaser = %q", got)
	}
	if got := models.Deref(out.Record.Seller); got != "华北钢铁有限公司" {
		t.Errorf("Seller = %q", got)
	}
	if out.Strategies[models.FieldPurchaser] != "flat-company" {
		t.Errorf("purchaser strategy = %q", out.Strategies[models.FieldPurchaser])
	}
}

func TestAssignCompaniesSkipsDuplicates(t *testing.T) {
	in := NewInput("华南建材有限公司; 华南建材有限公司; 华北钢铁有限公司", nil)
	in.Parties.Purchaser = "华南建材有限公司"

	filled := assignCompanies(in)
	if len(filled) != 1 || filled[0] != models.FieldSeller {
		t.Fatalf("filled = %v", filled)
	}
	if in.Parties.Seller != "华北钢铁有限公司" {
		t.Errorf("Seller = %q", in.Parties.Seller)
	}
}

func TestAmountChainRejectsOutOfRange(t *testing.T) {
	text := "价税合计(小写) ¥123456789.00\n捌拾捌圆整 ¥88.00"
	res := AmountChain().Run(NewInput(text, nil))
	if !res.Found {
		t.Fatal("no amount found")
	}
	if res.Strategy != "chinese-numerals" || res.Value != "88.00" {
		t.Errorf("got %q via %q", res.Value, res.Strategy)
	}
}

func TestAmountChainSkipsWrittenTotal(t *testing.T) {
	text := "价税合计（大写）壹佰圆整 100.00"
	res := AmountChain().Run(NewInput(text, nil))
	if !res.Found {
		t.Fatal("no amount found")
	}
	if res.Strategy != "flat-label" || res.Value != "100.00" {
		t.Errorf("got %q via %q", res.Value, res.Strategy)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{in: "1,234.50", want: "1234.5", wantOK: true},
		{in: "¥0.00", want: "0", wantOK: true},
		{in: "99999999.99", want: "99999999.99", wantOK: true},
		{in: "100000000", wantOK: false},
		{in: ",", wantOK: false},
		{in: "abc", wantOK: false},
	}
	for _, tt := range tests {
		d, ok := ParseAmount(tt.in)
		if ok != tt.wantOK {
			t.Errorf("ParseAmount(%q) ok = %v", tt.in, ok)
			continue
		}
		if ok && d.String() != tt.want {
			t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, d.String(), tt.want)
		}
	}
}
