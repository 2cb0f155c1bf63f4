package memory_test

import (
	"testing"

	"github.com/molonc/treealign/pkg/adapters/memory"
	"github.com/molonc/treealign/pkg/ports/tests"
)

func TestMemoryStore_Contract(t *testing.T) {
	tests.ResultStoreContractTest(t, memory.NewStore())
}
