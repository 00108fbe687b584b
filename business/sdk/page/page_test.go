package page_test

import (
	"testing"

	"github.com/sass-store/tenancy/business/sdk/page"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tt := []struct {
		name    string
		page    string
		rows    string
		offset  int
		wantErr bool
	}{
		{name: "defaults", offset: 0},
		{name: "third page", page: "3", rows: "20", offset: 40},
		{name: "zero page", page: "0", wantErr: true},
		{name: "too many rows", rows: "101", wantErr: true},
		{name: "garbage", page: "abc", wantErr: true},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			pg, err := page.Parse(tc.page, tc.rows)
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.offset, pg.Offset())
		})
	}
}
