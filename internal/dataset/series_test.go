package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSeriesFile(t *testing.T, dir, column, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, column+".csv"), []byte(content), 0o644); err != nil {
		t.Fatalf("write series file: %v", err)
	}
}

func TestReadSeries(t *testing.T) {
	dir := t.TempDir()
	writeSeriesFile(t, dir, "pt", "1.5\n-2.25\n3\n")

	values, err := ReadSeries(dir, "pt")
	if err != nil {
		t.Fatalf("read series: %v", err)
	}
	want := []float64{1.5, -2.25, 3}
	if len(values) != len(want) {
		t.Fatalf("series length: got=%d want=%d", len(values), len(want))
	}
	for i := range want {
		if values[i] != want[i] {
			t.Fatalf("series[%d]: got=%f want=%f", i, values[i], want[i])
		}
	}
}

func TestReadSeriesSkipsHeader(t *testing.T) {
	dir := t.TempDir()
	writeSeriesFile(t, dir, "pt", "pt\n4.5\n5.5\n")

	values, err := ReadSeries(dir, "pt")
	if err != nil {
		t.Fatalf("read series: %v", err)
	}
	if len(values) != 2 || values[0] != 4.5 || values[1] != 5.5 {
		t.Fatalf("unexpected series: %v", values)
	}
}

func TestReadSeriesRejectsGarbageRow(t *testing.T) {
	dir := t.TempDir()
	writeSeriesFile(t, dir, "pt", "1.0\nnot-a-number\n")

	_, err := ReadSeries(dir, "pt")
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "row 2") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReadSeriesMissingFile(t *testing.T) {
	if _, err := ReadSeries(t.TempDir(), "absent"); err == nil {
		t.Fatal("expected missing file error")
	}
}

func TestReadSeriesEndToEndBuild(t *testing.T) {
	sig := t.TempDir()
	bkg := t.TempDir()
	for dir, shift := range map[string]float64{sig: 0, bkg: 50} {
		writeSeriesFile(t, dir, "a", "1\n2\n")
		writeSeriesFile(t, dir, "b", "3\n4\n")
		if shift == 0 {
			writeSeriesFile(t, dir, "m", "99\n101\n")
		} else {
			writeSeriesFile(t, dir, "m", "10\n20\n")
		}
	}

	d, err := Build(Config{
		FeatureNames:        []string{"a", "b"},
		DiagnosticName:      "m",
		Sources:             []Source{{Path: sig, Signal: true}, {Path: bkg, Signal: false}},
		DiagnosticCenter:    100,
		DiagnosticHalfWidth: 10,
		Seed:                1,
		Readers:             2,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(d.Events) != 4 {
		t.Fatalf("events: got=%d want=4", len(d.Events))
	}
}
