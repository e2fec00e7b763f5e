package csvfile

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jones139/AgilentDMM/pkg/dmm"
	"github.com/jones139/AgilentDMM/pkg/output"
)

// FileOutput appends acquisition records to a CSV file, writing a header row
// when it creates the file.
type FileOutput struct {
	f *os.File
	w *csv.Writer
}

var _ output.Output = (*FileOutput)(nil)

// DefaultPath returns a timestamped log filename in the working directory.
func DefaultPath() string {
	return fmt.Sprintf("DMMLogger-%s.csv", time.Now().Format("20060102150405"))
}

func NewFile(path string) (*FileOutput, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	o := &FileOutput{f: f, w: csv.NewWriter(f)}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if st.Size() == 0 {
		if err := o.writeHeader(); err != nil {
			f.Close()
			return nil, err
		}
	}
	return o, nil
}

func (o *FileOutput) writeHeader() error {
	err := o.w.Write([]string{"time", "timestamp", "mean_v", "std_v", "n_samples", "elapsed_s"})
	o.w.Flush()
	if err != nil {
		return err
	}
	return o.w.Error()
}

func (o *FileOutput) Publish(r dmm.Record) error {
	rec := []string{
		r.Timestamp.Format("150405"),
		strconv.FormatInt(r.Timestamp.Unix(), 10),
		strconv.FormatFloat(r.Mean, 'f', 6, 64),
		strconv.FormatFloat(r.Std, 'f', 6, 64),
		strconv.Itoa(r.NSamples),
		strconv.FormatFloat(r.ElapsedS, 'f', 2, 64),
	}
	for _, t := range r.Temps {
		rec = append(rec, strconv.FormatFloat(t, 'f', 3, 64))
	}
	if err := o.w.Write(rec); err != nil {
		return err
	}
	// Flush per record so a killed run still leaves usable data.
	o.w.Flush()
	return o.w.Error()
}

func (o *FileOutput) Close() error {
	o.w.Flush()
	if err := o.w.Error(); err != nil {
		o.f.Close()
		return err
	}
	return o.f.Close()
}
