// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"testing"

	"github.com/spf13/afero"
)

func TestMemFs(t *testing.T) {
	t.Parallel()

	fs := MemFs(t, map[string]string{
		"/p/components/card/card.wxml": "<view/>",
		"/p/utils/fmt.wxs":             "module.exports = {}",
	})

	if got := MustReadFile(t, fs, "/p/utils/fmt.wxs"); got != "module.exports = {}" {
		t.Errorf("MustReadFile() = %q", got)
	}
	if ok, err := afero.DirExists(fs, "/p/components/card"); err != nil || !ok {
		t.Errorf("parent directory not created: %v %v", ok, err)
	}
}
