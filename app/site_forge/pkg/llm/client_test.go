package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type step struct {
	content string
	err     error
}

// fakeModel 按顺序返回预设结果
type fakeModel struct {
	steps []step
	calls int
	temps []float32
}

func (f *fakeModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	o := model.GetCommonOptions(&model.Options{}, opts...)
	if o.Temperature != nil {
		f.temps = append(f.temps, *o.Temperature)
	}
	s := f.steps[f.calls]
	f.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &schema.Message{Role: schema.Assistant, Content: s.content}, nil
}

func (f *fakeModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func TestClient_CompleteRetriesOnRateLimit(t *testing.T) {
	fm := &fakeModel{steps: []step{
		{err: errors.New("status 429: Too Many Requests")},
		{content: "hello"},
	}}
	c := NewWithModel(fm, nil, WithRetry(2, time.Millisecond))

	got, err := c.Complete(context.Background(), "sys", "user", 0.3)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	assert.Equal(t, 2, fm.calls)
	assert.Equal(t, []float32{0.3, 0.3}, fm.temps)
}

func TestClient_CompleteOtherErrorNotRetried(t *testing.T) {
	fm := &fakeModel{steps: []step{{err: errors.New("invalid api key")}, {content: "x"}}}
	c := NewWithModel(fm, nil, WithRetry(2, time.Millisecond))

	_, err := c.Complete(context.Background(), "sys", "user", 0.7)
	require.Error(t, err)
	assert.Equal(t, 1, fm.calls)
}

func TestClient_CompleteJSON(t *testing.T) {
	fm := &fakeModel{steps: []step{
		{content: "sorry, no json here"},
		{content: "Here you go:\n```json\n{\"name\": \"ABC\"}\n```"},
	}}
	c := NewWithModel(fm, nil, WithRetry(1, time.Millisecond))

	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, c.CompleteJSON(context.Background(), "sys", "user", 0.7, &out))
	assert.Equal(t, "ABC", out.Name)
	assert.Equal(t, 2, fm.calls)
}

func TestClient_CompleteJSON_RejectedReplyLeavesNoTrace(t *testing.T) {
	fm := &fakeModel{steps: []step{
		{content: `{"info":{"name":"FROM REJECTED REPLY"},"services":"oops"}`},
		{content: `{"services":["Repair","Install"]}`},
	}}
	c := NewWithModel(fm, nil, WithRetry(1, time.Millisecond))

	var out struct {
		Info struct {
			Name string `json:"name"`
		} `json:"info"`
		Services []string `json:"services"`
	}
	require.NoError(t, c.CompleteJSON(context.Background(), "sys", "user", 0.7, &out))
	assert.Equal(t, 2, fm.calls)
	assert.Empty(t, out.Info.Name)
	assert.Equal(t, []string{"Repair", "Install"}, out.Services)
}

func TestExtractJSON_TypeMismatchKeepsTarget(t *testing.T) {
	out := struct {
		A string `json:"a"`
		B int    `json:"b"`
	}{A: "keep"}
	err := ExtractJSON(`{"a":"changed","b":"not a number"}`, &out)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoJSON)
	assert.Equal(t, "keep", out.A)
	assert.Zero(t, out.B)
}

func TestClient_CompleteJSONGivesUp(t *testing.T) {
	fm := &fakeModel{steps: []step{{content: "nope"}, {content: "still nope"}}}
	c := NewWithModel(fm, nil, WithRetry(1, time.Millisecond))

	var out map[string]any
	err := c.CompleteJSON(context.Background(), "sys", "user", 0.7, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: `{"a":"1"}`, want: "1"},
		{name: "fenced", input: "```json\n{\"a\":\"2\"}\n```", want: "2"},
		{name: "surrounded by prose", input: `Sure! {"a":"3"} Hope that helps {"a":"4"}`, want: "3"},
		{name: "braces in prose before object", input: `Use {curly} braces: {"a":"5"}`, want: "5"},
		{name: "no object", input: "nothing", wantErr: true},
		{name: "truncated", input: `{"a":"6"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out struct {
				A string `json:"a"`
			}
			err := ExtractJSON(tt.input, &out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.A)
		})
	}
}
