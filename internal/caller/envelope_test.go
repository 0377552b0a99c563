package caller

import (
	"encoding/json"
	"testing"
)

func TestBuildEnvelopeJoinsPositionalArgs(t *testing.T) {
	raw, err := buildEnvelope([]string{"one", "two", "three"}, map[string]any{"state": "present"})
	if err != nil {
		t.Fatalf("buildEnvelope: %v", err)
	}

	var envelope map[string]map[string]any
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	payload := envelope["ANSIBLE_MODULE_ARGS"]
	if payload["_raw_params"] != "one two three" {
		t.Errorf("_raw_params = %q, want %q", payload["_raw_params"], "one two three")
	}
	if payload["state"] != "present" {
		t.Errorf("state = %q, want %q", payload["state"], "present")
	}
}

func TestBuildEnvelopeNoArgs(t *testing.T) {
	raw, err := buildEnvelope(nil, nil)
	if err != nil {
		t.Fatalf("buildEnvelope: %v", err)
	}

	var envelope map[string]map[string]any
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload := envelope["ANSIBLE_MODULE_ARGS"]; payload["_raw_params"] != "" {
		t.Errorf("_raw_params = %q, want empty string", payload["_raw_params"])
	}
}
