package serp

import (
	"bytes"
	"log/slog"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPage = `<html><body>
<div id="search">
  <div id="rso">
    <div class="g"><a href="https://www.gov.br/pt-br"><br><h3>gov.br - Portal do Governo</h3></a></div>
    <div class="g"><a href="https://www.gov.br/pt-br/servicos"><div><h3>  Serviços e Informações do Brasil  </h3></div></a></div>
    <div class="g"><a href="https://www.gov.br/pt-br"><h3>gov.br duplicate</h3></a></div>
    <div class="g"><a href="https://sso.acesso.gov.br"><h3></h3></a></div>
    <div class="g"><a><h3>No link</h3></a></div>
  </div>
</div>
<div id="footer"><a href="https://policies.google.com"><h3>Outside results</h3></a></div>
</body></html>`

func TestParseResults(t *testing.T) {
	t.Parallel()

	t.Run("first selector wins, duplicates and incomplete items dropped", func(t *testing.T) {
		t.Parallel()
		results, err := ParseHTML(resultsPage)
		require.NoError(t, err)
		assert.Equal(t, []Result{
			{Title: "gov.br - Portal do Governo", URL: "https://www.gov.br/pt-br"},
			{Title: "Serviços e Informações do Brasil", URL: "https://www.gov.br/pt-br/servicos"},
		}, results)
	})

	t.Run("falls back to rso container", func(t *testing.T) {
		t.Parallel()
		page := `<div id="rso"><a href="https://a.gov.br"><h3>A</h3></a></div>`
		results, err := ParseHTML(page)
		require.NoError(t, err)
		assert.Equal(t, []Result{{Title: "A", URL: "https://a.gov.br"}}, results)
	})

	t.Run("falls back to any linked heading", func(t *testing.T) {
		t.Parallel()
		page := `<main><a href="https://b.gov.br"><span><h3>B</h3></span></a><h3>unlinked</h3></main>`
		results, err := ParseHTML(page)
		require.NoError(t, err)
		assert.Equal(t, []Result{{Title: "B", URL: "https://b.gov.br"}}, results)
	})

	t.Run("no selector matches", func(t *testing.T) {
		t.Parallel()
		_, err := ParseHTML(`<html><body><h3>Nothing linked</h3></body></html>`)
		assert.ErrorIs(t, err, ErrNoResults)
	})

	t.Run("matching selector with only incomplete items", func(t *testing.T) {
		t.Parallel()
		results, err := ParseResults(strings.NewReader(`<div id="search"><a><h3>x</h3></a></div>`))
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestToTable(t *testing.T) {
	t.Parallel()

	table := ToTable([]Result{
		{Title: "gov.br", URL: "https://www.gov.br"},
		{Title: "Receita", URL: "https://www.gov.br/receitafederal"},
	})
	assert.Equal(t, []string{"titulo", "url"}, []string(table.Header()))
	require.Equal(t, 2, table.RowCount())
	assert.Equal(t, "https://www.gov.br/receitafederal", table.Value(1, 1))
}

func TestSearchURL(t *testing.T) {
	t.Parallel()

	u, err := url.Parse(SearchURL("gov.br saúde"))
	require.NoError(t, err)
	assert.Equal(t, "www.google.com", u.Host)
	assert.Equal(t, "gov.br saúde", u.Query().Get("q"))
	assert.Equal(t, "pt-BR", u.Query().Get("hl"))
}

func TestOptionsWithDefaults(t *testing.T) {
	t.Parallel()

	got := Options{}.withDefaults()
	assert.Equal(t, DefaultQuery, got.Query)
	assert.Equal(t, DefaultTimeout, got.Timeout)
	assert.NotEmpty(t, got.UserAgent)
	assert.False(t, got.Headless)
	assert.Same(t, slog.Default(), got.Logger)

	assert.True(t, DefaultOptions().Headless)
}

func TestParseResults_Logger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})).
		With("run_id", "run-1")

	results, err := parseResults(strings.NewReader(resultsPage), logger)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Contains(t, buf.String(), `"msg":"result selector matched"`)
	assert.Contains(t, buf.String(), `"run_id":"run-1"`)
}
