package output_test

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/venvup/internal/ui/output"
)

func TestColorProfile(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, termenv.Ascii, output.ColorProfile(), "NO_COLOR should force Ascii profile")
}

func TestNew_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	out := output.New(buf)
	styled := out.String("hello").Foreground(termenv.RGBColor("#F59E0B"))
	_, err := out.WriteString(styled.String())

	assert.NoError(t, err)
	assert.Equal(t, "hello", buf.String())
}

func TestPlain(t *testing.T) {
	buf := &bytes.Buffer{}
	out := output.Plain(buf)
	_, err := out.WriteString(out.String("plain").Foreground(termenv.RGBColor("#D93025")).Bold().String())

	assert.NoError(t, err)
	assert.Equal(t, "plain", buf.String())
}

func TestNew_NilWriter(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = output.New(nil)
	})
}
