package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/basel-ax/aiimage/internal/domain"
	"github.com/basel-ax/aiimage/internal/export"
	"github.com/basel-ax/aiimage/internal/lib/sl"
	"github.com/basel-ax/aiimage/internal/notify"
	"github.com/basel-ax/aiimage/internal/repository"
	"github.com/basel-ax/aiimage/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type stubGenerator struct {
	mu       sync.Mutex
	requests []domain.ImageGenerationRequest
	err      error
}

func (g *stubGenerator) GenerateImage(_ context.Context, req domain.ImageGenerationRequest) (*domain.ImageGenerationResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return &domain.ImageGenerationResponse{
		Images: []domain.GeneratedImage{{URL: "https://img.test/" + strings.ReplaceAll(req.Prompt, " ", "_") + ".png"}},
	}, nil
}

type memClipboard struct {
	mu   sync.Mutex
	text string
}

func (c *memClipboard) WriteAll(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	return nil
}

type stubSaver struct {
	mu    sync.Mutex
	saved []domain.Image
}

func (s *stubSaver) Save(_ context.Context, img domain.Image) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, img)
	return "/tmp/" + export.FileName(img.Prompt), nil
}

type fixture struct {
	session   *Session
	out       *safeBuffer
	gen       *stubGenerator
	clipboard *memClipboard
	saver     *stubSaver
}

func newFixture() *fixture {
	out := &safeBuffer{}
	notifier := notify.NewConsole(out)
	gen := &stubGenerator{}
	svc := service.NewImageGenerationService(gen, repository.NewMemoryImageRepository(), notifier, sl.Discard(), service.Options{})
	clip := &memClipboard{}
	copier := export.NewCopier(clip, notifier, sl.Discard(), time.Hour)
	saver := &stubSaver{}
	return &fixture{
		session:   NewSession(svc, copier, saver, out, sl.Discard()),
		out:       out,
		gen:       gen,
		clipboard: clip,
		saver:     saver,
	}
}

func (f *fixture) run(t *testing.T, lines ...string) {
	t.Helper()
	for _, line := range lines {
		f.session.Execute(context.Background(), line)
		f.session.Wait()
	}
}

func TestSession_GenerateAndList(t *testing.T) {
	f := newFixture()

	f.run(t, "size landscape", "quality hd", "generate a red fox", "list")

	require.Len(t, f.gen.requests, 1)
	assert.Equal(t, domain.ImageGenerationRequest{
		Prompt:    "a red fox",
		Size:      domain.SizeLandscape,
		Quality:   domain.QualityHD,
		Style:     domain.StyleNatural,
		NumImages: 1,
	}, f.gen.requests[0])

	out := f.out.String()
	assert.Contains(t, out, "Generating...")
	assert.Contains(t, out, "✓ "+notify.MsgGenerated)
	assert.Contains(t, out, "1 image generated")
	assert.Contains(t, out, "https://img.test/a_red_fox.png")
	assert.Contains(t, out, "[landscape hd ")
}

func TestSession_EmptyPrompt(t *testing.T) {
	f := newFixture()

	f.run(t, "generate")

	assert.Empty(t, f.gen.requests)
	assert.Contains(t, f.out.String(), "✗ "+notify.MsgEmptyPrompt)
	assert.NotContains(t, f.out.String(), "Generating...")
}

func TestSession_GenerateFailure(t *testing.T) {
	f := newFixture()
	f.gen.err = errors.New("provider down")

	f.run(t, "prompt a cat", "generate", "list")

	out := f.out.String()
	assert.Contains(t, out, "✗ "+notify.MsgGenerateFailed)
	assert.Contains(t, out, "Your generated images will appear here")
	assert.NotContains(t, out, "provider down")
}

func TestSession_InvalidOptionKeepsPrevious(t *testing.T) {
	f := newFixture()

	f.run(t, "size huge", "generate x")

	assert.Contains(t, f.out.String(), "invalid size: huge")
	require.Len(t, f.gen.requests, 1)
	assert.Equal(t, domain.SizeSquare, f.gen.requests[0].Size)
}

func TestSession_Examples(t *testing.T) {
	f := newFixture()

	f.run(t, "examples", "example 2", "example 99")

	out := f.out.String()
	assert.Contains(t, out, "  1. "+service.PreviewPrompt(service.ExamplePrompts[0], 30))
	assert.Contains(t, out, "Prompt: "+service.ExamplePrompts[1])
	assert.Contains(t, out, "Please choose a number between 1 and 6.")
}

func TestSession_CopyAndDownload(t *testing.T) {
	f := newFixture()

	f.run(t, "generate first", "generate second", "copy 2", "list", "download 1")

	assert.Equal(t, "https://img.test/first.png", f.clipboard.text)

	out := f.out.String()
	assert.Contains(t, out, "✓ "+notify.MsgCopied)
	assert.Contains(t, out, "first (copied)")
	assert.NotContains(t, out, "second (copied)")

	require.Len(t, f.saver.saved, 1)
	assert.Equal(t, "second", f.saver.saved[0].Prompt)
	assert.Contains(t, out, "Saved to /tmp/ai-image-second.png")
}

func TestSession_SelectOnEmptyGallery(t *testing.T) {
	f := newFixture()

	f.run(t, "copy 1")

	assert.Contains(t, f.out.String(), "Nothing to choose from yet.")
	assert.Empty(t, f.clipboard.text)
}

func TestSession_StatusAndUnknown(t *testing.T) {
	f := newFixture()

	f.run(t, "status", "frobnicate")

	out := f.out.String()
	assert.Contains(t, out, "Idle. Your generated images will appear here")
	assert.Contains(t, out, `Unknown command "frobnicate"`)
}

func TestSession_RunStopsOnQuit(t *testing.T) {
	f := newFixture()

	in := strings.NewReader("generate hello\nquit\ngenerate never\n")
	require.NoError(t, f.session.Run(context.Background(), in))

	require.Len(t, f.gen.requests, 1)
	assert.Equal(t, "hello", f.gen.requests[0].Prompt)
}

func TestSession_RunStopsOnEOF(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.session.Run(context.Background(), strings.NewReader("options\n")))
	assert.Contains(t, f.out.String(), "Prompt: (empty)")
	assert.Contains(t, f.out.String(), "Size: square (1024x1024)  Quality: standard  Style: natural")
}

func TestDisplayURL(t *testing.T) {
	assert.Equal(t, "https://x", displayURL("https://x"))
	long := "data:image/png;base64," + strings.Repeat("A", 100)
	assert.Equal(t, long[:48]+"...", displayURL(long))
}
