package domain

import (
	"encoding/json"
	"testing"
)

func TestClassificationResultDecodesSparsePayload(t *testing.T) {
	var result ClassificationResult
	if err := json.Unmarshal([]byte(`{"request_type":"Billing","sub_request_type":"Refund"}`), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if StringValue(result.RequestType) != "Billing" || StringValue(result.SubRequestType) != "Refund" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.IsDuplicate() || result.HasSimilarity() {
		t.Fatalf("expected no duplicate data")
	}
	if _, ok := result.ErrorMessage(); ok {
		t.Fatalf("expected no error indicator")
	}
}

func TestClassificationResultReadsBothErrorSpellings(t *testing.T) {
	var upper ClassificationResult
	if err := json.Unmarshal([]byte(`{"Error":"Rate limit exceeded","retry_after":30}`), &upper); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	msg, ok := upper.ErrorMessage()
	if !ok || msg != "Rate limit exceeded" {
		t.Fatalf("expected upper-case error indicator, got %q", msg)
	}
	if upper.RetryAfter == nil || *upper.RetryAfter != 30 {
		t.Fatalf("expected retry_after 30, got %v", upper.RetryAfter)
	}

	var lower ClassificationResult
	if err := json.Unmarshal([]byte(`{"error":"model offline"}`), &lower); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg, ok := lower.ErrorMessage(); ok {
		t.Fatalf("only the Error key signals failure, got %q", msg)
	}
}

func TestClassificationResultTreatsZeroSimilarityAsAbsent(t *testing.T) {
	var result ClassificationResult
	if err := json.Unmarshal([]byte(`{"duplicate_found":true,"similarity":0}`), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !result.IsDuplicate() {
		t.Fatalf("expected duplicate flag")
	}
	if result.HasSimilarity() {
		t.Fatalf("expected zero similarity to be treated as absent")
	}
}

func TestNewResultViewFallsBackToNotAvailable(t *testing.T) {
	similarity := 0.875
	duplicate := true
	view := NewResultView(&ClassificationResult{
		DuplicateFound: &duplicate,
		Similarity:     &similarity,
	})
	if view.RequestType != NotAvailable || view.SubRequestType != NotAvailable {
		t.Fatalf("expected N/A categories, got %+v", view)
	}
	if !view.DuplicateFound || view.SimilarityPercent != "87.50" {
		t.Fatalf("unexpected duplicate banner data: %+v", view)
	}
	if !view.ShowSimilarTo || view.SimilarText != NotAvailable {
		t.Fatalf("expected similar-to block with N/A text, got %+v", view)
	}
	if view.Reasoning != "" {
		t.Fatalf("expected empty reasoning, got %q", view.Reasoning)
	}
}

func TestClassificationResultToleratesOtherShapes(t *testing.T) {
	for _, payload := range []string{`[]`, `"ok"`, `null`, `42`} {
		var result ClassificationResult
		if err := json.Unmarshal([]byte(payload), &result); err != nil {
			t.Fatalf("unmarshal %s: %v", payload, err)
		}
		if _, failed := result.ErrorMessage(); failed || result.RequestType != nil {
			t.Fatalf("expected empty result for %s, got %+v", payload, result)
		}
	}

	var mixed ClassificationResult
	if err := json.Unmarshal([]byte(`{"retry_after":"15","duplicate_found":"yes","request_type":7}`), &mixed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if mixed.RetryAfter == nil || *mixed.RetryAfter != 15 {
		t.Fatalf("expected numeric retry_after from string, got %v", mixed.RetryAfter)
	}
	if mixed.DuplicateFound != nil {
		t.Fatalf("expected non-bool duplicate_found to be ignored")
	}
	if StringValue(mixed.RequestType) != "7" {
		t.Fatalf("expected raw request_type text, got %q", StringValue(mixed.RequestType))
	}
}

func TestClassificationResultRejectsInvalidJSON(t *testing.T) {
	var result ClassificationResult
	if err := json.Unmarshal([]byte(`<html>`), &result); err == nil {
		t.Fatalf("expected error for non-JSON payload")
	}
}
