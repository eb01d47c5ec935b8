package cli

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pdfier/internal/client/models"
	"github.com/dmitrijs2005/pdfier/internal/client/services"
	"github.com/dmitrijs2005/pdfier/internal/common"
)

func twoItems() *services.ToolOutcome {
	return &services.ToolOutcome{
		Tool:    models.ToolCompress,
		Message: "done",
		Items: []models.DownloadItem{
			{URL: "https://cdn/a.pdf", FileName: "compressed-document-1.pdf", SizeKB: 120, EstimatedPages: 3},
			{URL: "https://cdn/b.pdf", FileName: "compressed-document-2.pdf", SizeKB: 10, EstimatedPages: 1},
		},
	}
}

func TestCompress_ShowsItemsAndDownloads(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, guestState(0, 10))
	a.tools.outcome = twoItems()

	require.NoError(t, a.Compress(ctx, []string{"high"}))
	assert.Equal(t, "high", a.tools.level)
	out := a.out.String()
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "compressed-document-1.pdf  120.0 KB, ~3 pages")

	require.NoError(t, a.Download(ctx, []string{"2"}))
	require.Len(t, a.tools.downloaded, 1)
	assert.Equal(t, "https://cdn/b.pdf", a.tools.downloaded[0].URL)
	assert.Contains(t, a.out.String(), "Saved "+filepath.Join(a.tools.dir, "compressed-document-2.pdf"))

	require.NoError(t, a.Download(ctx, []string{"all"}))
	assert.Len(t, a.tools.downloaded, 3)

	require.ErrorIs(t, a.Download(ctx, []string{"3"}), errUsage)
	require.ErrorIs(t, a.Download(ctx, nil), errUsage)
}

func TestCompress_DefaultLevel(t *testing.T) {
	a := newTestApp(t, guestState(0, 10))
	a.tools.outcome = &services.ToolOutcome{}

	require.NoError(t, a.Compress(context.Background(), nil))
	assert.Equal(t, "", a.tools.level)
	require.ErrorIs(t, a.Compress(context.Background(), []string{"a", "b"}), errUsage)
}

func TestDownload_NothingYet(t *testing.T) {
	a := newTestApp(t, guestState(0, 10))
	require.NoError(t, a.Download(context.Background(), []string{"1"}))
	assert.Contains(t, a.out.String(), "Nothing to download")
}

func TestMerge_ErrorKeepsPreviousResults(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, guestState(10, 10))
	a.tools.outcome = twoItems()
	require.NoError(t, a.Merge(ctx))

	a.tools.err = common.ErrQuotaExceeded
	require.ErrorIs(t, a.Merge(ctx), common.ErrQuotaExceeded)
	assert.Len(t, a.lastItems, 2)
}

func TestMerge_InlineSaved(t *testing.T) {
	a := newTestApp(t, memberState("alice"))
	a.tools.outcome = &services.ToolOutcome{Tool: models.ToolMerge, Saved: []string{"/tmp/merged.pdf"}}

	require.NoError(t, a.Merge(context.Background()))
	assert.Contains(t, a.out.String(), "Saved /tmp/merged.pdf")
	assert.NotContains(t, a.out.String(), "download <n>")
}

func TestProtect(t *testing.T) {
	a := newTestApp(t, guestState(0, 10))
	a.tools.outcome = &services.ToolOutcome{}
	stubInputs(t, nil, []string{"pw", "pw"})

	require.NoError(t, a.Protect(context.Background(), []string{"low", "copy", "forms"}))
	assert.Equal(t, "pw", a.tools.password)
	assert.Equal(t, models.Permissions{Printing: models.PrintingLow, Copying: true, FormFilling: true}, a.tools.perms)
}

func TestParsePermissions(t *testing.T) {
	p, err := parsePermissions(nil)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPermissions(), p)

	p, err = parsePermissions([]string{"NONE", "modify"})
	require.NoError(t, err)
	assert.Equal(t, models.Permissions{Printing: models.PrintingNone, Modifying: true}, p)

	_, err = parsePermissions([]string{"print"})
	assert.True(t, errors.Is(err, errUsage))
}
