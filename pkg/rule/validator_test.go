package rule_test

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/sujaykar/echovault/pkg/rule"
)

type registerForm struct {
	ID        string `rule:"required,max=64"`
	MediaType string `rule:"required"`
	Text      string `rule:"max=1024"`
}

func TestEngine(t *testing.T) {
	if rule.Engine() == nil {
		t.Fatal("Engine() returned nil")
	}

	if rule.Engine() != rule.Engine() {
		t.Error("Engine() should return the same instance")
	}
}

func TestValidateStruct(t *testing.T) {
	valid := registerForm{ID: "01hqz3xv9p", MediaType: "audio/webm"}
	if err := rule.ValidateStruct(valid); err != nil {
		t.Errorf("valid form rejected: %v", err)
	}

	missing := registerForm{MediaType: "audio/webm"}
	if err := rule.ValidateStruct(missing); err == nil {
		t.Error("expected error for missing ID")
	}

	tooLong := registerForm{ID: strings.Repeat("a", 65), MediaType: "audio/webm"}
	if err := rule.ValidateStruct(tooLong); err == nil {
		t.Error("expected error for oversized ID")
	}
}

func TestValidateVar(t *testing.T) {
	if err := rule.ValidateVar("127.0.0.1:6379", "hostname_port"); err != nil {
		t.Errorf("valid addr rejected: %v", err)
	}

	if err := rule.ValidateVar("not an addr", "hostname_port"); err == nil {
		t.Error("expected error for malformed addr")
	}

	if err := rule.ValidateVar(0, "min=1"); err == nil {
		t.Error("expected error for zero value")
	}
}

func TestRegisterValidation(t *testing.T) {
	err := rule.RegisterValidation("mediatype", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}

		return strings.Count(s, "/") == 1 && !strings.HasPrefix(s, "/") && !strings.HasSuffix(s, "/")
	})
	if err != nil {
		t.Fatalf("RegisterValidation: %v", err)
	}

	if err := rule.ValidateVar("audio/webm", "mediatype"); err != nil {
		t.Errorf("valid media type rejected: %v", err)
	}

	if err := rule.ValidateVar("webm", "mediatype"); err == nil {
		t.Error("expected error for bare subtype")
	}
}

func TestErrors(t *testing.T) {
	if got := rule.Errors(nil); got != nil {
		t.Errorf("Errors(nil) = %v, want nil", got)
	}

	err := rule.ValidateStruct(registerForm{Text: strings.Repeat("x", 2048)})
	fields := rule.Errors(err)

	if msg, ok := fields["ID"]; !ok || !strings.Contains(msg, "required") {
		t.Errorf("ID error = %q, want required mention", msg)
	}

	if msg, ok := fields["Text"]; !ok || !strings.Contains(msg, "max=1024") {
		t.Errorf("Text error = %q, want max=1024 mention", msg)
	}

	plain := rule.Errors(errBoom{})
	if plain["_"] != "boom" {
		t.Errorf("non-field error = %v, want _=boom", plain)
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
