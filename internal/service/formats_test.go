package service_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ytdl-ui/ytdl/internal/service"
)

const formatTable = `[youtube] abc: Downloading webpage
[info] Available formats for abc:
ID  EXT   RESOLUTION FPS |   FILESIZE   TBR PROTO | VCODEC        VBR ACODEC      ABR
---------------------------------------------------------------------------------------
137 mp4   1920x1080   30 |  154.12MiB 4400k https | avc1.640028  4400k video only
22  mp4   1280x720    30 | ~ 48.20MiB 1377k https | avc1.64001F  1377k mp4a.40.2  0k

140 m4a   audio only     |    3.36MiB  129k https | audio only        mp4a.40.2 129k
`

func TestParseFormats(t *testing.T) {
	t.Parallel()

	var testCases = []struct {
		scenario string
		given    string
		then     []string
	}{
		{
			scenario: "dashes",
			given:    formatTable,
			then:     []string{"137", "22", "140"},
		},
		{
			scenario: "box drawing",
			given:    strings.Replace(formatTable, "-----", "─────", 1),
			then:     []string{"137", "22", "140"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.scenario, func(t *testing.T) {
			formats, err := service.ParseFormats(strings.NewReader(tc.given))
			require.NoError(t, err)
			ids := make([]string, 0, len(formats))
			for _, f := range formats {
				ids = append(ids, f.ID)
				require.True(t, strings.HasPrefix(f.Line, f.ID+" "))
			}
			require.Equal(t, tc.then, ids)
		})
	}

	t.Run("no table", func(t *testing.T) {
		_, err := service.ParseFormats(strings.NewReader("ERROR: Unsupported URL\n"))
		require.ErrorIs(t, err, service.ErrNoFormats)
	})
}

func TestListFormats(t *testing.T) {
	t.Parallel()
	ytdlp := fakeYtdlp(t, `
[ "$1" = "-S" ] && [ "$2" = "hasvid,vext,bitrate" ] && [ "$3" = "-F" ] || exit 2
cat <<'TABLE'
`+formatTable+`TABLE
`)

	formats, err := service.ListFormats(t.Context(), ytdlp, testURL)
	require.NoError(t, err)
	require.Len(t, formats, 3)
	require.Equal(t, "137", formats[0].ID)

	_, err = service.ListFormats(t.Context(), ytdlp, " ")
	require.ErrorIs(t, err, service.ErrBlankURL)

	failing := fakeYtdlp(t, `echo "ERROR: Unsupported URL: $4" >&2; exit 1`)
	_, err = service.ListFormats(t.Context(), failing, testURL)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ERROR: Unsupported URL")
}
