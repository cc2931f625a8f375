package output

import (
	"fmt"
	"os"

	"github.com/joseph-ayodele/ocr-pdf/internal/common"
)

// WriteText writes text to path in one open-write-close sequence, truncating
// any existing file. The parent directory must already exist.
func WriteText(path, text string) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return common.WriteError(fmt.Sprintf("open %q", path), err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = common.WriteError(fmt.Sprintf("close %q", path), cerr)
		}
	}()

	if _, err := f.WriteString(text); err != nil {
		return common.WriteError(fmt.Sprintf("write %q", path), err)
	}
	return nil
}
