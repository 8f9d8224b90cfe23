package shoppinglist

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Flour", Capitalize("flour"))
	assert.Equal(t, "Brown sugar", Capitalize("BROWN SUGAR"))
	assert.Equal(t, "Мука", Capitalize("мука"))
	assert.Equal(t, "", Capitalize(""))
}

func TestFormatLine(t *testing.T) {
	assert.Equal(t, "Flour (g) — 500", FormatLine(Item{Name: "flour", Unit: "g", Amount: 500}))
	assert.Equal(t,
		[]string{"Eggs (pcs) — 3", "Milk (ml) — 250"},
		Lines([]Item{{Name: "eggs", Unit: "pcs", Amount: 3}, {Name: "milk", Unit: "ml", Amount: 250}}),
	)
	assert.Empty(t, Lines(nil))
}

func pageCount(t *testing.T, doc []byte) int {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(doc), int64(len(doc)))
	require.NoError(t, err)
	return r.NumPage()
}

func TestRenderSinglePage(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer("", "").Render(&buf, []string{"Flour (g) — 500", "Eggs (pcs) — 3"})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Equal(t, 1, pageCount(t, buf.Bytes()))
}

func TestRenderEmptyListHasTitleOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer("Shopping list", "").Render(&buf, nil))
	assert.Equal(t, 1, pageCount(t, buf.Bytes()))
}

func TestRenderPaginates(t *testing.T) {
	lines := make([]string, 40)
	for i := range lines {
		lines[i] = fmt.Sprintf("Item %d (g) — %d", i, i+1)
	}

	var buf bytes.Buffer
	require.NoError(t, NewRenderer("Shopping list", "").Render(&buf, lines))

	// 29 lines fit below the title on the first page.
	assert.Equal(t, 2, pageCount(t, buf.Bytes()))
}

func TestRenderMissingFontFails(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer("Shopping list", "/nonexistent/font.ttf").Render(&buf, []string{"x"})
	assert.Error(t, err)
}
