package simulator

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cyberguard/ml"
)

const capture = "\ufeff Flow Duration, Total Fwd Packets, Protocol, Label\n" +
	"5,12,tcp,BENIGN\n" +
	"7,Infinity,tcp,DDoS\n" +
	"9,,udp,DDoS\n" +
	"11,300,udp,DDoS\n" +
	"13,NaN,udp,BENIGN\n"

func TestReadSample(t *testing.T) {
	sample, err := ReadSample(strings.NewReader(capture))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectedColumns := []string{"Flow Duration", "Total Fwd Packets", "Protocol", "Label"}
	for i, name := range expectedColumns {
		if sample.Columns[i] != name {
			t.Fatalf("column %d: expected %q, got %q", i, name, sample.Columns[i])
		}
	}
	if !sample.HasLabel {
		t.Fatal("expected label column")
	}
	if len(sample.Rows) != 2 || sample.Dropped != 3 {
		t.Fatalf("expected 2 rows and 3 dropped, got %d and %d", len(sample.Rows), sample.Dropped)
	}

	first := sample.Rows[0]
	if first.Label != "BENIGN" {
		t.Fatalf("unexpected label %q", first.Label)
	}
	if _, ok := first.Features["Label"]; ok {
		t.Fatal("label must not be sent as a feature")
	}
	if first.Features["Flow Duration"].Float() != 5 || first.Features["Total Fwd Packets"].Float() != 12 {
		t.Fatalf("unexpected features: %v", first.Features)
	}
	if first.Features["Protocol"].Kind() != ml.Text {
		t.Fatalf("expected text protocol, got %s", first.Features["Protocol"].Kind())
	}
}

func TestReadSampleEmpty(t *testing.T) {
	_, err := ReadSample(strings.NewReader("a,b,Label\n1,,BENIGN\n"))
	if !errors.Is(err, ErrEmptySample) {
		t.Fatalf("expected ErrEmptySample, got %v", err)
	}
}

func TestReadSampleDropsUnlabelledRows(t *testing.T) {
	sample, err := ReadSample(strings.NewReader("a,Label\n1,BENIGN\n2,\n3, \n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sample.Rows) != 1 || sample.Dropped != 2 {
		t.Fatalf("expected 1 row and 2 dropped, got %d rows and %d dropped", len(sample.Rows), sample.Dropped)
	}
	if _, err := sample.Attack(rand.New(rand.NewSource(1))); !errors.Is(err, ErrNoAttacks) {
		t.Fatalf("expected ErrNoAttacks, got %v", err)
	}
}

func TestLoadSampleMissingFile(t *testing.T) {
	if _, err := LoadSample(filepath.Join(t.TempDir(), "traffic_data.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSampleAttack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traffic_data.csv")
	if err := os.WriteFile(path, []byte(capture), 0o600); err != nil {
		t.Fatal(err)
	}
	sample, err := LoadSample(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 10; i++ {
		row, err := sample.Attack(rng)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if row.Label != "DDoS" {
			t.Fatalf("expected attack row, got %q", row.Label)
		}
	}
}

func TestSampleAttackFallbacks(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	benignOnly, err := ReadSample(strings.NewReader("a,Label\n1,BENIGN\n2,BENIGN\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := benignOnly.Attack(rng); !errors.Is(err, ErrNoAttacks) {
		t.Fatalf("expected ErrNoAttacks, got %v", err)
	}

	unlabelled, err := ReadSample(strings.NewReader("a,b\n1,2\n"))
	if err != nil {
		t.Fatal(err)
	}
	row, err := unlabelled.Attack(rng)
	if !errors.Is(err, ErrNoLabel) {
		t.Fatalf("expected ErrNoLabel, got %v", err)
	}
	if len(row.Features) != 2 {
		t.Fatalf("expected fallback row, got %v", row.Features)
	}
}
