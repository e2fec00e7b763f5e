package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jones139/AgilentDMM/pkg/config"
	"github.com/jones139/AgilentDMM/pkg/dmm"
	"github.com/jones139/AgilentDMM/pkg/output"
	"github.com/jones139/AgilentDMM/pkg/output/console"
	"github.com/jones139/AgilentDMM/pkg/output/csvfile"
	"github.com/jones139/AgilentDMM/pkg/output/mqtt"
)

func main() {
	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg config.Config) error {
	meter, err := initMeter(cfg)
	if err != nil {
		return fmt.Errorf("meter: %w", err)
	}
	defer meter.Close()

	var tempMon dmm.TempMonitor
	if cfg.TempDevice != "" {
		tempMon, err = dmm.NewLakeshore218(dmm.DefaultTempPortConfig(cfg.TempDevice))
		if err != nil {
			return fmt.Errorf("temperature monitor: %w", err)
		}
		defer tempMon.Close()
	}

	outs, err := initOutputs(cfg)
	if err != nil {
		return fmt.Errorf("outputs: %w", err)
	}
	defer closeOutputs(outs)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	log.Printf("collecting %d records of %d samples from %s", cfg.NRecords, cfg.NSamples, cfg.Device)
	interval := time.Duration(cfg.IntervalMs) * time.Millisecond
	for rec := 0; rec < cfg.NRecords; rec++ {
		select {
		case <-stop:
			log.Printf("interrupted after %d records", rec)
			return nil
		default:
		}

		record, err := acquire(meter, tempMon, cfg.NSamples)
		if err != nil {
			return fmt.Errorf("record %d: %w", rec, err)
		}
		for _, o := range outs {
			if err := o.Publish(record); err != nil {
				log.Printf("publish: %v", err)
			}
		}

		if interval > 0 && rec < cfg.NRecords-1 {
			select {
			case <-stop:
				log.Printf("interrupted after %d records", rec+1)
				return nil
			case <-time.After(interval):
			}
		}
	}
	log.Printf("finished: %d records", cfg.NRecords)
	return nil
}

// acquire reads one record: nSamp meter samples summarised to mean/std, plus
// all temperature channels when a monitor is attached.
func acquire(meter dmm.Meter, tempMon dmm.TempMonitor, nSamp int) (dmm.Record, error) {
	now := time.Now()
	vals, elapsed, err := meter.ReadVoltsMultiple(nSamp)
	if err != nil {
		return dmm.Record{}, err
	}
	mean, std := summarize(vals)
	rec := dmm.Record{
		Timestamp: now,
		Mean:      mean,
		Std:       std,
		NSamples:  len(vals),
		ElapsedS:  elapsed.Seconds(),
	}
	if tempMon != nil {
		temps, err := tempMon.ReadTempAll()
		if err != nil {
			return dmm.Record{}, err
		}
		rec.Temps = temps
	}
	return rec, nil
}

// summarize returns the mean and population standard deviation of vals.
func summarize(vals []float64) (mean, std float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))
	var ss float64
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(vals)))
}

func initMeter(cfg config.Config) (dmm.Meter, error) {
	if cfg.MeterType == "simulation" {
		return dmm.NewFakeMeter(1.0, 0.01), nil
	}
	pc := dmm.DefaultPortConfig(cfg.Device)
	pc.BaudRate = cfg.BaudRate
	pc.ReadTimeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	return dmm.NewAgilent34401(pc, dmm.MeterConfig{Range: cfg.Range, NPLC: cfg.NPLC})
}

func initOutputs(cfg config.Config) ([]output.Output, error) {
	outs := make([]output.Output, 0, len(cfg.Outputs))
	for _, oc := range cfg.Outputs {
		switch strings.ToLower(oc.Type) {
		case "console":
			outs = append(outs, console.NewConsole())
		case "csv":
			path := ""
			if oc.File != nil {
				path = oc.File.Path
			}
			if path == "" {
				path = csvfile.DefaultPath()
			}
			o, err := csvfile.NewFile(path)
			if err != nil {
				closeOutputs(outs)
				return nil, err
			}
			outs = append(outs, o)
		case "mqtt":
			mc := config.MQTTConfig{}
			if oc.MQTT != nil {
				mc = *oc.MQTT
			}
			o, err := mqtt.NewMQTT(mc)
			if err != nil {
				closeOutputs(outs)
				return nil, err
			}
			outs = append(outs, o)
		default:
			closeOutputs(outs)
			return nil, fmt.Errorf("unknown output type %q", oc.Type)
		}
	}
	if len(outs) == 0 {
		outs = append(outs, console.NewConsole())
	}
	return outs, nil
}

func closeOutputs(outs []output.Output) {
	for _, o := range outs {
		if err := o.Close(); err != nil {
			log.Printf("close output: %v", err)
		}
	}
}
