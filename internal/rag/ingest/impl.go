package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/akolanti/BookRAG/internal/config"
	"github.com/akolanti/BookRAG/internal/domain/commonModels"
	"gopkg.in/yaml.v3"
)

const frontmatterFence = "---"

var codeBlock = regexp.MustCompile("(?s)```.*?```")

// FileError records the stage a file was in when ingestion failed.
type FileError struct {
	File  string
	Stage commonModels.FileStage
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s failed at %s: %v", e.File, e.Stage, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

func failAt(file string, stage commonModels.FileStage, err error) error {
	return &FileError{File: file, Stage: stage, Err: err}
}

func stageOf(err error) commonModels.FileStage {
	var fe *FileError
	if errors.As(err, &fe) {
		return fe.Stage
	}
	return commonModels.StagePending
}

// ParseFrontmatter splits a leading "---" block from the body. The block is
// read as YAML; if that fails it falls back to one "key: value" per line.
func ParseFrontmatter(content string) (map[string]any, string) {
	meta := map[string]any{}
	if !strings.HasPrefix(content, frontmatterFence) {
		return meta, content
	}
	end := strings.Index(content[len(frontmatterFence):], frontmatterFence)
	if end < 0 {
		return meta, content
	}
	end += len(frontmatterFence)

	block := strings.TrimSpace(content[len(frontmatterFence):end])
	body := strings.TrimSpace(content[end+len(frontmatterFence):])

	var parsed map[string]any
	if err := yaml.Unmarshal([]byte(block), &parsed); err == nil && parsed != nil {
		return parsed, body
	}

	for _, line := range strings.Split(block, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		meta[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"'`)
	}
	return meta, body
}

// ChapterFromPath returns the first path segment naming a chapter directory.
func ChapterFromPath(path string) string {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if strings.HasPrefix(part, config.ChapterDirPrefix) {
			return part
		}
	}
	return config.UnknownChapter
}

// StripCodeBlocks replaces fenced code with a placeholder so code does not
// dominate the embeddings.
func StripCodeBlocks(body string) string {
	return codeBlock.ReplaceAllString(body, config.CodeBlockPlaceholder)
}

// ListCorpusFiles returns every markdown file under root in lexical order.
func ListCorpusFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".md", ".mdx":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func titleOf(meta map[string]any, path string) string {
	if v, ok := meta["title"]; ok && v != nil {
		if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
			return s
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
