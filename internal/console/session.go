// Package console implements the interactive terminal front end: prompt and option
// state, a generate control gated by the busy flag, and the gallery with copy and
// download actions.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/basel-ax/aiimage/internal/domain"
	"github.com/basel-ax/aiimage/internal/lib/sl"
	"github.com/basel-ax/aiimage/internal/service"
)

const helpText = `Commands:
  prompt <text>      set the prompt
  size <value>       square | portrait | landscape (or 1024x1024, 1024x1792, 1792x1024)
  quality <value>    standard | hd
  style <value>      natural | vivid
  options            show the current prompt and options
  examples           list example prompts
  example <n>        use example prompt n
  generate [text]    generate an image (optionally setting the prompt first)
  status             show whether a generation is running
  list               show generated images, newest first
  copy <n>           copy the URL of image n to the clipboard
  download <n>       save image n to the download directory
  help               show this help
  quit               leave the session`

// ImageService is the part of the generation service the session drives
type ImageService interface {
	Generate(ctx context.Context, in service.GenerateInput) (*domain.Image, error)
	IsGenerating() bool
	Images(ctx context.Context) ([]domain.Image, error)
	Summary(ctx context.Context) (string, error)
	Defaults() (domain.Size, domain.Quality, domain.Style)
}

// Copier copies URLs and reports the "copied" indicator
type Copier interface {
	Copy(url string) error
	IsCopied(url string) bool
}

// Saver downloads an image to local storage
type Saver interface {
	Save(ctx context.Context, img domain.Image) (string, error)
}

// Session is one interactive console session
type Session struct {
	svc    ImageService
	copier Copier
	saver  Saver
	out    io.Writer
	log    *slog.Logger

	mu      sync.Mutex
	prompt  string
	size    domain.Size
	quality domain.Quality
	style   domain.Style

	wg sync.WaitGroup
}

// NewSession creates a session writing to out. out must be safe for concurrent use
// because background work reports through it, see SyncWriter.
func NewSession(svc ImageService, copier Copier, saver Saver, out io.Writer, log *slog.Logger) *Session {
	size, quality, style := svc.Defaults()
	return &Session{
		svc:     svc,
		copier:  copier,
		saver:   saver,
		out:     out,
		log:     log.With(sl.Module("console")),
		size:    size,
		quality: quality,
		style:   style,
	}
}

// Run reads commands from in until quit, EOF or ctx cancellation, then waits for
// background work to finish.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	defer s.Wait()

	s.println("AI Image Generator. Type 'help' for commands.")

	lines := make(chan string)
	errCh := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		errCh <- scanner.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-errCh
			}
			if s.Execute(ctx, line) {
				return nil
			}
		}
	}
}

// Wait blocks until background generations and downloads are done
func (s *Session) Wait() {
	s.wg.Wait()
}

// Execute runs a single command line and reports whether the session should end
func (s *Session) Execute(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "quit", "exit":
		return true
	case "help", "?":
		s.println(helpText)
	case "prompt":
		s.setPrompt(arg)
	case "size":
		s.setOption(arg, func(v string) error {
			size, err := domain.ParseSize(v)
			if err == nil {
				s.size = size
			}
			return err
		})
	case "quality":
		s.setOption(arg, func(v string) error {
			quality, err := domain.ParseQuality(v)
			if err == nil {
				s.quality = quality
			}
			return err
		})
	case "style":
		s.setOption(arg, func(v string) error {
			style, err := domain.ParseStyle(v)
			if err == nil {
				s.style = style
			}
			return err
		})
	case "options":
		s.printOptions()
	case "examples":
		for i, example := range service.ExamplePrompts {
			s.printf("  %d. %s\n", i+1, service.PreviewPrompt(example, 30))
		}
	case "example":
		n, ok := s.index(arg, len(service.ExamplePrompts))
		if ok {
			s.setPrompt(service.ExamplePrompts[n])
		}
	case "generate", "gen":
		if arg != "" {
			s.setPrompt(arg)
		}
		s.generate(ctx)
	case "status":
		s.printStatus(ctx)
	case "list", "ls":
		s.list(ctx)
	case "copy":
		if img, ok := s.image(ctx, arg); ok {
			_ = s.copier.Copy(img.URL)
		}
	case "download", "dl":
		if img, ok := s.image(ctx, arg); ok {
			s.download(ctx, img)
		}
	default:
		s.printf("Unknown command %q. Type 'help' for commands.\n", cmd)
	}

	return false
}

func (s *Session) generate(ctx context.Context) {
	if s.svc.IsGenerating() {
		s.println("Generating... please wait.")
		return
	}

	s.mu.Lock()
	in := service.GenerateInput{
		Prompt:  s.prompt,
		Size:    string(s.size),
		Quality: string(s.quality),
		Style:   string(s.style),
	}
	s.mu.Unlock()

	if strings.TrimSpace(in.Prompt) != "" {
		s.println("Generating...")
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		img, err := s.svc.Generate(ctx, in)
		if err != nil {
			return
		}
		s.printImage(0, *img)
	}()
}

func (s *Session) download(ctx context.Context, img domain.Image) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		path, err := s.saver.Save(ctx, img)
		if err != nil {
			return
		}
		s.printf("Saved to %s\n", path)
	}()
}

func (s *Session) setPrompt(prompt string) {
	s.mu.Lock()
	s.prompt = prompt
	s.mu.Unlock()
	s.printf("Prompt: %s\n", prompt)
}

func (s *Session) setOption(arg string, apply func(string) error) {
	s.mu.Lock()
	err := apply(arg)
	s.mu.Unlock()
	if err != nil {
		s.printf("%v\n", err)
		return
	}
	s.printOptions()
}

func (s *Session) printOptions() {
	s.mu.Lock()
	prompt, size, quality, style := s.prompt, s.size, s.quality, s.style
	s.mu.Unlock()

	if prompt == "" {
		prompt = "(empty)"
	}
	s.printf("Prompt: %s\nSize: %s (%s)  Quality: %s  Style: %s\n", prompt, size.Label(), size, quality, style)
}

func (s *Session) printStatus(ctx context.Context) {
	state := "Idle"
	if s.svc.IsGenerating() {
		state = "Generating..."
	}
	summary, err := s.svc.Summary(ctx)
	if err != nil {
		s.log.Error("gallery summary", sl.Err(err))
		return
	}
	s.printf("%s. %s\n", state, summary)
}

func (s *Session) list(ctx context.Context) {
	images, err := s.svc.Images(ctx)
	if err != nil {
		s.log.Error("gallery list", sl.Err(err))
		return
	}
	s.println(service.GallerySummary(len(images)))
	for i, img := range images {
		s.printImage(i+1, img)
	}
}

func (s *Session) printImage(n int, img domain.Image) {
	marker := ""
	if s.copier.IsCopied(img.URL) {
		marker = " (copied)"
	}
	label := "new"
	if n > 0 {
		label = strconv.Itoa(n)
	}
	s.printf("  %s. [%s %s %s] %s%s\n     %s\n",
		label,
		img.Size.Label(),
		img.Quality,
		img.CreatedAt.Format("15:04:05"),
		service.PreviewPrompt(img.Prompt, 60),
		marker,
		displayURL(img.URL),
	)
}

// image resolves a 1-based gallery position
func (s *Session) image(ctx context.Context, arg string) (domain.Image, bool) {
	images, err := s.svc.Images(ctx)
	if err != nil {
		s.log.Error("gallery list", sl.Err(err))
		return domain.Image{}, false
	}
	n, ok := s.index(arg, len(images))
	if !ok {
		return domain.Image{}, false
	}
	return images[n], true
}

func (s *Session) index(arg string, count int) (int, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > count {
		if count == 0 {
			s.println("Nothing to choose from yet.")
		} else {
			s.printf("Please choose a number between 1 and %d.\n", count)
		}
		return 0, false
	}
	return n - 1, true
}

func (s *Session) println(text string) {
	fmt.Fprintln(s.out, text)
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// displayURL keeps data URIs from flooding the terminal
func displayURL(url string) string {
	if strings.HasPrefix(url, "data:") && len(url) > 48 {
		return url[:48] + "..."
	}
	return url
}
