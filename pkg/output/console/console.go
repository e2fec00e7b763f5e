package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/jones139/AgilentDMM/pkg/dmm"
	"github.com/jones139/AgilentDMM/pkg/output"
)

type ConsoleOutput struct{}

func NewConsole() output.Output { return &ConsoleOutput{} }

func (c *ConsoleOutput) Publish(r dmm.Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s n=%d mean=%.6f std=%.6f elapsed=%.2fs",
		r.Timestamp.Format(time.RFC3339), r.NSamples, r.Mean, r.Std, r.ElapsedS)
	for _, t := range r.Temps {
		fmt.Fprintf(&b, " %.3f", t)
	}
	fmt.Println(b.String())
	return nil
}

func (c *ConsoleOutput) Close() error { return nil }
