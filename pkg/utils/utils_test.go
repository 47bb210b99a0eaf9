package utils

import (
	"testing"
	"unicode/utf8"

	"fapiao/pkg/models"
)

func TestFlatten(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "ascii spaces and newlines", in: "发 票\n号 码：\t123", want: "发票号码：123"},
		{name: "ideographic space", in: "名称　北京", want: "名称北京"},
		{name: "no-break space", in: "价税 合计", want: "价税合计"},
		{name: "crlf", in: "a\r\nb", want: "ab"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Flatten(tt.in)
			if got != tt.want {
				t.Errorf("Flatten(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := Flatten(got); again != got {
				t.Errorf("Flatten not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestFoldWidth(t *testing.T) {
	got := FoldWidth("号码：１２３４５６７８ ￥１０.００")
	want := "号码:12345678 ¥10.00"
	if got != want {
		t.Errorf("FoldWidth() = %q, want %q", got, want)
	}
}

func TestCleanAmount(t *testing.T) {
	if got := CleanAmount(" ¥1,234.50 "); got != "1234.50" {
		t.Errorf("CleanAmount() = %q", got)
	}
	if got := CleanAmount("￥88.00"); got != "88.00" {
		t.Errorf("CleanAmount() = %q", got)
	}
}

func TestDigitsOnly(t *testing.T) {
	if got := DigitsOnly("2 0 2 2 年 1 0 月"); got != "202210" {
		t.Errorf("DigitsOnly() = %q", got)
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{name: "label tokens stripped", in: "购买方名称：ABC咨询有限公司", want: "ABC咨询有限公司", wantOK: true},
		{name: "spaces inside name", in: "上海 某某 科技 有限公司", want: "上海某某科技有限公司", wantOK: true},
		{name: "all digits", in: "12345", wantOK: false},
		{name: "too short", in: "AB", wantOK: false},
		{name: "short after stripping", in: "名称:甲乙", wantOK: false},
		{name: "empty", in: "", wantOK: false},
		{name: "machine serial", in: "机器编号499099", wantOK: false},
		{name: "tax authority", in: "国家税务总局上海市税务局", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CleanName(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("CleanName(%q) ok = %v, want %v (got %q)", tt.in, ok, tt.wantOK, got)
			}
			if !ok {
				return
			}
			if got != tt.want {
				t.Errorf("CleanName(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if utf8.RuneCountInString(got) < 4 {
				t.Errorf("CleanName(%q) returned %q, shorter than 4 runes", tt.in, got)
			}
			again, ok := CleanName(got)
			if !ok || again != got {
				t.Errorf("CleanName not idempotent: %q -> %q (%v)", got, again, ok)
			}
		})
	}
}

func TestGetQuarter(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "2022年10月17日", want: "2022-Q4"},
		{in: "2023-01-15", want: "2023-Q1"},
		{in: "2023/06/30", want: "2023-Q2"},
		{in: "2023.07.01", want: "2023-Q3"},
		{in: "2024年3月9日", want: "2024-Q1"},
		{in: "开票日期2021-11-02 10:00", want: "2021-Q4"},
		{in: "2023-13-01", want: models.QuarterUnknown},
		{in: "garbage", want: models.QuarterUnknown},
		{in: "", want: models.QuarterUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := GetQuarter(tt.in); got != tt.want {
				t.Errorf("GetQuarter(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2022年1月5日")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if got := CanonicalDate(d); got != "2022年01月05日" {
		t.Errorf("CanonicalDate() = %q", got)
	}

	if _, err := ParseDate("2022年02月30日"); err == nil {
		t.Error("expected error for day out of range")
	}
}

func TestFormatDateParts(t *testing.T) {
	if got := FormatDateParts("2023", "7", "9"); got != "2023年07月09日" {
		t.Errorf("FormatDateParts() = %q", got)
	}
}

func TestTruncateText(t *testing.T) {
	if got := TruncateText("上海甲乙科技有限公司", 4); got != "上海甲乙..." {
		t.Errorf("TruncateText() = %q", got)
	}
	if got := TruncateText("short", 10); got != "short" {
		t.Errorf("TruncateText() = %q", got)
	}
}
