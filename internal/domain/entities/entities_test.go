package entities

import (
	"errors"
	"fmt"
	"testing"
)

func TestOutcomeConstructors(t *testing.T) {
	success := Success("the answer")
	if success.Kind != OutcomeSuccess || success.Answer != "the answer" {
		t.Errorf("Success outcome wrong: %+v", success)
	}

	rejected := Rejected("not a question")
	if rejected.Kind != OutcomeRejected || rejected.Reason != "not a question" {
		t.Errorf("Rejected outcome wrong: %+v", rejected)
	}

	noAnswer := NoAnswer("nothing relevant")
	if noAnswer.Kind != OutcomeNoAnswer || noAnswer.Reason != "nothing relevant" {
		t.Errorf("NoAnswer outcome wrong: %+v", noAnswer)
	}

	cause := errors.New("boom")
	failure := Failure(cause)
	if failure.Kind != OutcomeError || !errors.Is(failure.Err, cause) {
		t.Errorf("Failure outcome wrong: %+v", failure)
	}
}

func TestGatewayError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("retrieval: %w", &GatewayError{Op: "embed", Err: cause})

	var ge *GatewayError
	if !errors.As(err, &ge) {
		t.Fatal("expected GatewayError in chain")
	}
	if ge.Op != "embed" {
		t.Errorf("Op = %q, want embed", ge.Op)
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause in chain")
	}
}

func TestIsGatewayTimeout(t *testing.T) {
	timeout := &GatewayError{Op: "complete", Timeout: true, Err: errors.New("deadline")}
	if !IsGatewayTimeout(fmt.Errorf("stage: %w", timeout)) {
		t.Error("wrapped timeout not detected")
	}
	if IsGatewayTimeout(&GatewayError{Op: "complete", Err: errors.New("503")}) {
		t.Error("non-timeout reported as timeout")
	}
	if IsGatewayTimeout(errors.New("plain")) {
		t.Error("plain error reported as timeout")
	}
}

func TestMalformedOutputError_Message(t *testing.T) {
	err := &MalformedOutputError{Stage: "selection", Raw: "not json", Err: errors.New("invalid character")}
	if got := err.Error(); got != "selection: model output is not valid JSON: invalid character" {
		t.Errorf("Error() = %q", got)
	}
}

func TestChatMessage_Roles(t *testing.T) {
	user := ChatMessage{Role: "user", Content: "hello"}
	assistant := ChatMessage{Role: "assistant", Content: "hi there"}

	if user.Role != "user" || assistant.Role != "assistant" {
		t.Error("roles not set correctly")
	}
}
