package config

import (
	"path/filepath"
	"strings"

	"github.com/okra-platform/apigen/internal/codegen"
	"github.com/okra-platform/apigen/internal/codegen/comment"
	"github.com/okra-platform/apigen/internal/postgen"
	"github.com/okra-platform/apigen/internal/source"
)

// Resolve makes a config-relative path absolute
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir, path)
}

// SourceLocation returns the model location, with file paths resolved
func (c *Config) SourceLocation() string {
	if source.IsRemote(c.Source) || strings.HasPrefix(c.Source, "file://") {
		return c.Source
	}
	return c.Resolve(c.Source)
}

// OutputDir returns the resolved service output directory
func (c *Config) OutputDir() string {
	return c.Resolve(c.Output.Dir)
}

// TypesDir returns the resolved type declaration directory
func (c *Config) TypesDir() string {
	return c.Resolve(c.Output.TypesDir)
}

// TypesImport is the module path from the output directory to the types directory
func (c *Config) TypesImport() string {
	rel, err := filepath.Rel(c.OutputDir(), c.TypesDir())
	if err != nil {
		return "../types"
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel
}

// CodegenOptions converts the configuration into generator options. The template
// file named by templatePath is read by the caller and passed as TemplateText.
func (c *Config) CodegenOptions() codegen.Options {
	opts := codegen.DefaultOptions()
	opts.UseInterface = c.UseInterface
	opts.NamespacePrefix = c.NamespacePrefix
	opts.UnwrapGenericTypes = c.UnwrapGenericTypes
	opts.TypePrefix = c.TypePrefix
	opts.TypesImport = c.TypesImport()
	opts.ImportLines = c.ImportLines
	opts.APIPrefix = c.APIPrefix
	opts.PropertyNaming = codegen.PropertyNaming(c.PropertyNaming)
	opts.OnCycle = codegen.CycleBehavior(c.OnCycle)
	opts.Template = c.Template
	opts.Comments = codegen.CommentOptions{
		Enabled: c.Comments.Enabled,
		Config: comment.Config{
			MaxLength:          c.Comments.MaxLength,
			MaxLines:           c.Comments.MaxLines,
			PreserveHTMLTags:   c.Comments.PreserveHTMLTags,
			PreserveLineBreaks: c.Comments.PreserveLineBreaks,
		},
	}
	return opts
}

// PostGen converts the post-generation settings, resolving the working directory
func (c *Config) PostGen() postgen.Config {
	dir := c.Resolve(c.PostGeneration.WorkingDirectory)
	if dir == "" {
		dir = c.Dir
	}
	return postgen.Config{
		WorkingDirectory: dir,
		Command:          c.PostGeneration.Command,
		Arguments:        c.PostGeneration.Arguments,
		Timeout:          c.PostGeneration.Timeout,
		Wait:             c.PostGeneration.Wait,
	}
}
