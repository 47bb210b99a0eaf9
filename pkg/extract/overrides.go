// pkg/extract/overrides.go

package extract

// DateOverrides maps a file's basename to a manually verified issue date.
// An entry is used only when every date strategy failed for that file.
type DateOverrides map[string]string

// DefaultDateOverrides lists files whose text layer has no recoverable date
var DefaultDateOverrides = DateOverrides{
	// Date text is unreadable; verified against the rendered page
	"拼多多商家电子发票-74.pdf": "2022年10月17日",
}

// Merge returns a new table with extra entries layered over o
func (o DateOverrides) Merge(extra map[string]string) DateOverrides {
	merged := make(DateOverrides, len(o)+len(extra))
	for k, v := range o {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

// Lookup returns the override for filename
func (o DateOverrides) Lookup(filename string) (string, bool) {
	v, ok := o[filename]
	return v, ok && v != ""
}
