package queue

import (
	"encoding/json"
	"testing"
)

type retrainArgs struct {
	Symbol string `json:"symbol"`
	Trials int    `json:"trials"`
}

func TestParsePayloadRawMessage(t *testing.T) {
	raw := json.RawMessage(`{"symbol":"AAPL","trials":20}`)

	got, err := ParsePayload[retrainArgs](raw)
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if got.Symbol != "AAPL" || got.Trials != 20 {
		t.Fatalf("ParsePayload returned %+v", got)
	}
}

func TestParsePayloadMap(t *testing.T) {
	m := map[string]interface{}{"symbol": "MSFT", "trials": float64(5)}

	got, err := ParsePayload[retrainArgs](m)
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if got.Symbol != "MSFT" || got.Trials != 5 {
		t.Fatalf("ParsePayload returned %+v", got)
	}
}

func TestParsePayloadPassThrough(t *testing.T) {
	in := retrainArgs{Symbol: "GOOG", Trials: 3}

	byValue, err := ParsePayload[retrainArgs](in)
	if err != nil {
		t.Fatalf("ParsePayload by value: %v", err)
	}
	if *byValue != in {
		t.Fatalf("ParsePayload by value returned %+v", byValue)
	}

	byPointer, err := ParsePayload[retrainArgs](&in)
	if err != nil {
		t.Fatalf("ParsePayload by pointer: %v", err)
	}
	if byPointer != &in {
		t.Fatal("ParsePayload by pointer did not return the original")
	}
}

func TestParsePayloadRejectsUnknownType(t *testing.T) {
	if _, err := ParsePayload[retrainArgs](42); err == nil {
		t.Fatal("expected error for unsupported payload type")
	}
}

func TestNormalizePayloadReencodesMaps(t *testing.T) {
	out := normalizePayload(map[string]interface{}{"symbol": "AAPL"})

	raw, ok := out.(json.RawMessage)
	if !ok {
		t.Fatalf("normalizePayload returned %T, want json.RawMessage", out)
	}
	got, err := ParsePayload[retrainArgs](raw)
	if err != nil {
		t.Fatalf("ParsePayload on normalized payload: %v", err)
	}
	if got.Symbol != "AAPL" {
		t.Fatalf("normalized payload decoded to %+v", got)
	}
}
