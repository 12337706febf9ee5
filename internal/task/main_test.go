package task

import (
	"os"
	"testing"

	"github.com/randomizedcoder/show-runtime/internal/testutil"
)

func TestMain(m *testing.M) {
	testutil.MaybeRunFakeHelper()
	os.Exit(m.Run())
}
