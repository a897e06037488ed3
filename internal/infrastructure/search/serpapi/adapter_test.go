package serpapi

import (
	"context"
	"errors"
	"testing"

	"articlegen/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCaller struct {
	answer string
	err    error
	inputs []string
}

func (f *fakeCaller) Call(_ context.Context, input string) (string, error) {
	f.inputs = append(f.inputs, input)
	return f.answer, f.err
}

func TestSearch_WrapsAnswerAsResult(t *testing.T) {
	fc := &fakeCaller{answer: "  Humanoid robots are entering warehouses.  "}
	a := &Adapter{tool: fc}

	results, err := a.Search(context.Background(), "robotics trends")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "Humanoid robots are entering warehouses.", results[0].Snippet)
	assert.Equal(t, "https://www.google.com/search?q=robotics+trends", results[0].URL)
	assert.Equal(t, []string{"robotics trends"}, fc.inputs)
}

func TestSearch_EmptyAnswer(t *testing.T) {
	results, err := (&Adapter{tool: &fakeCaller{answer: " "}}).Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_ErrorIsProviderError(t *testing.T) {
	_, err := (&Adapter{tool: &fakeCaller{err: errors.New("boom")}}).Search(context.Background(), "q")
	assert.ErrorIs(t, err, entity.ErrProvider)
}

func TestNew_RequiresKey(t *testing.T) {
	t.Setenv("SERPAPI_API_KEY", "")
	_, err := New("", nil)
	assert.Error(t, err)
}
