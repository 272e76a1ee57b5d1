package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"

	"github.com/clinicaldss/trialscreen/internal/config"
	"github.com/clinicaldss/trialscreen/internal/logging"
	"github.com/clinicaldss/trialscreen/internal/patients"
)

func main() {
	config.LoadDotEnv()
	logging.InitFromEnv()

	in := flag.String("in", "dm2_final_flat.csv", "source patient dataset")
	out := flag.String("out", "patients_for_trial_screening.csv", "sampled output file")
	n := flag.Int("n", 300, "number of patients to sample")
	seed := flag.Int64("seed", 42, "sampling seed, fixed for reproducible batches")
	flag.Parse()

	records, err := patients.Load(*in)
	if err != nil {
		logging.Fatalf("[sample-patients] %v", err)
	}
	sampled := patients.Sample(records, *n, *seed)
	if len(sampled) == 0 {
		logging.Fatalf("[sample-patients] nothing to sample from %s", *in)
	}

	if err := writeCSV(*out, sampled); err != nil {
		logging.Fatalf("[sample-patients] write %s: %v", *out, err)
	}
	fmt.Printf("[sample-patients] wrote %d of %d patients to %s (seed=%d)\n", len(sampled), len(records), *out, *seed)
}

func writeCSV(path string, records []patients.Record) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := make([]string, len(records[0].Fields))
	for i, f := range records[0].Fields {
		header[i] = f.Name
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		row := make([]string, len(rec.Fields))
		for i, f := range rec.Fields {
			row[i] = f.Value
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
