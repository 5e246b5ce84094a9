package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/akolanti/BookRAG/internal/app"
	"github.com/akolanti/BookRAG/internal/chat"
	"github.com/akolanti/BookRAG/internal/config"
	"github.com/akolanti/BookRAG/internal/data/store"
	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"github.com/akolanti/BookRAG/internal/rag"
	"github.com/akolanti/BookRAG/internal/rag/ingest"
	"github.com/akolanti/BookRAG/internal/rag/ragtest"
	"github.com/akolanti/BookRAG/internal/rag/splitter"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

var passages = []commonModels.SourceResult{
	{Text: "PID controllers correct error.", Source: "docs/chapter-4/control.md", Chapter: "chapter-4", Title: "Control", Score: 0.88},
	{Text: "Actuators move joints.", Source: "docs/chapter-4/actuators.md", Chapter: "chapter-4", Title: "Actuators", Score: 0.75},
}

type testServices struct {
	app      *app.App
	index    *ragtest.RecordingIndex
	provider *ragtest.ScriptedLLM
	docs     *ragtest.Documents
}

// setupTestServices installs an application built from fakes and restores
// the package state when the test ends.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	ts := &testServices{
		index:    &ragtest.RecordingIndex{Results: passages},
		provider: ragtest.NewScriptedLLM("Torque ", "control."),
		docs:     &ragtest.Documents{},
	}
	embedder := ragtest.NewHashEmbedder(16)
	chunker, err := splitter.New(200, 20)
	require.NoError(t, err)

	answers := rag.NewService(embedder, ts.index, ts.provider, rag.DefaultOptions())
	conversations := store.InitInMemoryConversationStore()
	ts.app = &app.App{
		Settings:      config.Settings{AppVersion: "test", DocsPath: t.TempDir()},
		Index:         ts.index,
		Embedder:      embedder,
		Provider:      ts.provider,
		Conversations: conversations,
		Documents:     ts.docs,
		Answers:       answers,
		Chat:          chat.NewService(answers, conversations),
		Ingestor:      ingest.NewIngestor(chunker, embedder, ts.index, ts.docs, 2),
	}

	SetServices(ts.app)
	t.Cleanup(func() { SetServices(nil) })
	return ts
}

// execute runs the command tree with args and returns everything it
// printed. Flags are reset afterwards so tests do not leak into each other.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags(rootCmd)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeDoc(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
