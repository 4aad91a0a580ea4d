package session_test

import (
	"testing"

	"github.com/okvist/dfm/internal/session"
)

func Test_AssocCmd_EncodesDescriptionAndCommas(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		assoc session.Assoc
		want  string
	}{
		{
			name:  "plain command",
			assoc: session.Assoc{Cmd: "less %f"},
			want:  "less %f",
		},
		{
			name:  "description prefixed",
			assoc: session.Assoc{Cmd: "mpv %f", Description: "play"},
			want:  "{play}mpv %f",
		},
		{
			name:  "commas doubled",
			assoc: session.Assoc{Cmd: "cmd -o a,b"},
			want:  "cmd -o a,,b",
		},
		{
			name:  "description and commas",
			assoc: session.Assoc{Cmd: "x a,b", Description: "d"},
			want:  "{d}x a,,b",
		},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := session.EncodeAssocCmd(tt.assoc)
			if got != tt.want {
				t.Fatalf("EncodeAssocCmd = %q, want %q", got, tt.want)
			}

			description, cmd := session.DecodeAssocCmd(got)
			if description != tt.assoc.Description || cmd != tt.assoc.Cmd {
				t.Fatalf("DecodeAssocCmd(%q) = (%q, %q), want (%q, %q)",
					got, description, cmd, tt.assoc.Description, tt.assoc.Cmd)
			}
		})
	}
}

func Test_AssocList_Exists_MatchesStoredForm(t *testing.T) {
	t.Parallel()

	l := session.NewAssocList()
	l.Add(session.Assoc{Matchers: "*.mp4", Cmd: "mpv %f", Description: "play"})

	if !l.Exists("*.mp4", "{play}mpv %f") {
		t.Error("existing pair not found")
	}

	if l.Exists("*.mp4", "mpv %f") {
		t.Error("pair with different description reported as existing")
	}

	if l.Exists("*.mkv", "{play}mpv %f") {
		t.Error("pair with different matchers reported as existing")
	}
}
