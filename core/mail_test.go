package core

import (
	"testing"
	texttmpl "text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailMessage_renderText(t *testing.T) {
	defer func() { templates = nil }()

	tmpl := texttmpl.Must(texttmpl.New("greet").Parse("Hello {{.Data}}"))
	templates = tmplCache{"greet": {".txt": tmpl}}

	t.Run("cached template wins over BodyStr", func(t *testing.T) {
		msg := EmailMessage{
			TemplateName: "greet",
			TemplateData: "World",
			BodyStr:      "fallback body",
		}
		require.NoError(t, msg.renderText())
		assert.Equal(t, "Hello World", msg.TextContent)
	})

	t.Run("BodyStr fallback when template is not cached", func(t *testing.T) {
		msg := EmailMessage{
			TemplateName: "farewell",
			BodyStr:      "fallback body",
		}
		require.NoError(t, msg.renderText())
		assert.Equal(t, "fallback body", msg.TextContent)
	})

	t.Run("BodyStr only", func(t *testing.T) {
		msg := EmailMessage{BodyStr: "plain body"}
		require.NoError(t, msg.renderText())
		assert.Equal(t, "plain body", msg.TextContent)
	})
}
