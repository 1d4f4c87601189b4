package configfile

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"strings"
	"text/template"
	"unicode"

	"github.com/h44z/mariadb-varportal/internal"
	"github.com/h44z/mariadb-varportal/internal/domain"
)

//go:embed tpl_files/*
var TemplateFiles embed.FS

// Option is a single line of the [mysqld] section.
type Option struct {
	Name  string
	Value string
	Skip  bool
}

// SkipName returns the option name in the dashed form used by skip- prefixed options.
func (o Option) SkipName() string {
	return strings.ReplaceAll(o.Name, "_", "-")
}

// NewOptions converts overrides to option lines. Overrides without value and skip flag are dropped.
func NewOptions(overrides []domain.VariableOverride) []Option {
	options := make([]Option, 0, len(overrides))
	for _, o := range overrides {
		switch {
		case o.Skip:
			options = append(options, Option{Name: o.OptionName(), Skip: true})
		case o.Value().IsSet():
			options = append(options, Option{Name: o.OptionName(), Value: o.Value().String()})
		}
	}

	return options
}

// TemplateHandler is responsible for rendering the MariaDB option files
// based on the provided templates.
type TemplateHandler struct {
	templates *template.Template
}

// singleLine replaces control characters so a value can never start a new option line.
func singleLine(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

func newTemplateHandler() (*TemplateHandler, error) {
	templateCache, err := template.New("MariaDB").
		Funcs(template.FuncMap{"singleLine": singleLine}).
		ParseFS(TemplateFiles, "tpl_files/*.tpl")
	if err != nil {
		return nil, err
	}

	handler := &TemplateHandler{
		templates: templateCache,
	}

	return handler, nil
}

// GetServerConfig returns the rendered option file for a database server.
func (c TemplateHandler) GetServerConfig(server *domain.DatabaseServer, options []Option) (io.Reader, error) {
	var tplBuff bytes.Buffer

	err := c.templates.ExecuteTemplate(&tplBuff, "mysqld.cnf.tpl", map[string]any{
		"Server":  server,
		"Options": options,
		"Portal": map[string]any{
			"Version": internal.Version,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute option file template for %s: %w", server.Identifier, err)
	}

	return &tplBuff, nil
}
