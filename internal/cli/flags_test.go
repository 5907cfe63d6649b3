package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/codegraph/pkg/pipeline"
	"github.com/matzehuels/codegraph/pkg/render"
)

func newFlagCommand() *cobra.Command {
	return &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
}

func TestSourceFlagsOnlyChangedOverride(t *testing.T) {
	var src sourceFlags
	cmd := newFlagCommand()
	src.register(cmd)
	if err := cmd.ParseFlags([]string{"--seed", "9"}); err != nil {
		t.Fatal(err)
	}

	opts := pipeline.Options{Seed: 1, Folders: 6, NoDeps: true}
	if err := src.apply(cmd, &opts); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if opts.Seed != 9 {
		t.Errorf("Seed = %d, want 9", opts.Seed)
	}
	if opts.Folders != 6 || !opts.NoDeps {
		t.Errorf("unset flags overrode configuration: %+v", opts)
	}
}

func TestSourceFlagsSelect(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "webapp")
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"README.md", "src/main.go"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var src sourceFlags
	cmd := newFlagCommand()
	src.register(cmd)
	if err := cmd.ParseFlags([]string{"--select", dir}); err != nil {
		t.Fatal(err)
	}

	var opts pipeline.Options
	if err := src.apply(cmd, &opts); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if opts.Source != pipeline.SourceSelection {
		t.Errorf("Source = %q, want selection", opts.Source)
	}
	if len(opts.Files) != 2 {
		t.Errorf("Files = %v, want 2 handles", opts.Files)
	}
	if opts.RootName != "webapp" {
		t.Errorf("RootName = %q, want webapp", opts.RootName)
	}
}

func TestRenderFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		check   func(t *testing.T, opts pipeline.Options)
	}{
		{
			name: "scheme over config",
			args: []string{"--scheme", "ocean"},
			check: func(t *testing.T, opts pipeline.Options) {
				if opts.Settings.ColorScheme != render.SchemeOcean {
					t.Errorf("ColorScheme = %q", opts.Settings.ColorScheme)
				}
				if opts.Settings.NodeSize != render.DefaultSettings().NodeSize {
					t.Errorf("NodeSize changed to %d", opts.Settings.NodeSize)
				}
			},
		},
		{
			name: "highlight and scale",
			args: []string{"--highlight", "n3", "--scale", "3"},
			check: func(t *testing.T, opts pipeline.Options) {
				if opts.Highlight != "n3" || opts.Scale != 3 {
					t.Errorf("Highlight = %q, Scale = %v", opts.Highlight, opts.Scale)
				}
			},
		},
		{name: "unknown scheme", args: []string{"--scheme", "neon"}, wantErr: true},
		{name: "node size too small", args: []string{"--node-size", "5"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rf renderFlags
			cmd := newFlagCommand()
			rf.register(cmd)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatal(err)
			}
			opts := pipeline.Options{Settings: render.DefaultSettings()}
			err := rf.apply(cmd, &opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("apply() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, opts)
			}
		})
	}
}

func TestLayoutFlagsDefaultMode(t *testing.T) {
	var lay layoutFlags
	cmd := newFlagCommand()
	lay.register(cmd, pipeline.ModeLayered)
	if err := cmd.ParseFlags([]string{"--orphans", "drop"}); err != nil {
		t.Fatal(err)
	}

	var opts pipeline.Options
	lay.apply(cmd, &opts)
	if opts.Mode != pipeline.ModeLayered {
		t.Errorf("Mode = %q, want the command default", opts.Mode)
	}
	if opts.Orphans != "drop" {
		t.Errorf("Orphans = %q, want drop", opts.Orphans)
	}

	// A configured mode wins over the command default.
	opts = pipeline.Options{Mode: pipeline.ModeBuilder}
	lay.apply(cmd, &opts)
	if opts.Mode != pipeline.ModeBuilder {
		t.Errorf("Mode = %q, want the configured builder mode", opts.Mode)
	}
}
