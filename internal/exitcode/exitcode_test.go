package exitcode

import (
	stderrors "errors"
	"testing"

	"github.com/fleety/fleetyctl/internal/errors"
)

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "nil error",
			err:  nil,
			want: Success,
		},
		{
			name: "bad credentials",
			err:  errors.NewBadCredentialsError(nil),
			want: AuthError,
		},
		{
			name: "no active session",
			err:  errors.NewNoActiveSessionError(),
			want: AuthError,
		},
		{
			name: "rejected token",
			err:  errors.New(errors.ErrCodeUnauthorized, "token rejected"),
			want: AuthError,
		},
		{
			name: "local validation",
			err:  errors.NewUsernameRequiredError(),
			want: UsageError,
		},
		{
			name: "unreachable platform",
			err:  errors.New(errors.ErrCodeRequestFailed, "connection refused"),
			want: NetworkError,
		},
		{
			name: "timeout",
			err:  errors.New(errors.ErrCodeRequestTimeout, "deadline exceeded"),
			want: NetworkError,
		},
		{
			name: "remote rejection",
			err:  errors.New(errors.ErrCodeRemoteDuplicate, "already a member"),
			want: GeneralError,
		},
		{
			name: "cobra unknown command",
			err:  stderrors.New(`unknown command "orgs" for "fleetyctl"`),
			want: UsageError,
		},
		{
			name: "plain error",
			err:  stderrors.New("something broke"),
			want: GeneralError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineExitCode(tt.err); got != tt.want {
				t.Errorf("DetermineExitCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	codes := []int{Success, GeneralError, UsageError, AuthError, NetworkError, Interrupted, 99}
	for _, code := range codes {
		if Describe(code) == "" {
			t.Errorf("Describe(%d) returned empty string", code)
		}
	}
}
