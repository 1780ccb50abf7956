// Command termgpu-demo draws a gradient panel with wrapped text on the
// terminal using the software shader pipeline.
//
// Usage:
//
//	termgpu-demo [flags] [message...]
//
// The message is sent through a pipe and wrapped into the panel. With
// -snapshot the frame is written as a PNG instead of to the terminal.
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/termgpu"
	"github.com/gogpu/termgpu/action"
	"github.com/gogpu/termgpu/fixedfunc"
	"github.com/gogpu/termgpu/pipeline"
	"github.com/gogpu/termgpu/present"
	"github.com/gogpu/termgpu/resource"
	"github.com/gogpu/termgpu/shader"
)

const defaultMessage = "termgpu renders this panel with a vertex shader, " +
	"a gradient fragment shader and a second pass that gathers wrapped text from an image."

func main() {
	var (
		width       = flag.Uint("width", 48, "panel width in cells")
		height      = flag.Uint("height", 12, "panel height in cells")
		configPath  = flag.String("config", "", "TOML configuration file")
		snapshot    = flag.String("snapshot", "", "write the frame to this PNG file")
		printConfig = flag.Bool("print-config", false, "print the effective configuration and exit")
		debug       = flag.Bool("debug", false, "log debug output to stderr")
	)
	flag.Parse()

	if *debug {
		termgpu.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg := termgpu.DefaultConfig()
	cfg.Present.Backend = "ansi"
	if *configPath != "" {
		var err error
		if cfg, err = termgpu.LoadConfig(*configPath); err != nil {
			log.Fatal(err)
		}
	}
	if *printConfig {
		if err := cfg.Write(os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	opts := []termgpu.EngineOption{termgpu.WithConfig(cfg), termgpu.WithOutput(os.Stdout)}
	if *snapshot != "" {
		f, err := os.Create(*snapshot)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		opts = append(opts, termgpu.WithPresenter(present.NewSnapshot(f)))
	}
	e, err := termgpu.New(opts...)
	if err != nil {
		log.Fatal(err)
	}

	message := defaultMessage
	if flag.NArg() > 0 {
		message = strings.Join(flag.Args(), " ")
	}
	if err := run(e, uint32(*width), uint32(*height), message); err != nil {
		log.Fatal(err)
	}
	if *snapshot == "" {
		fmt.Printf("\x1b[%d;1H\n", *height+1)
	}
}

func run(e *termgpu.Engine, w, h uint32, message string) error {
	if w < 8 || h < 4 {
		return fmt.Errorf("panel %dx%d is too small", w, h)
	}
	scene, err := newScene(e, w, h)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	sendErr := e.BindPipe("message", scene.list).Send(ctx, []byte(message))
	cancel()
	if err := <-done; err != nil {
		return err
	}
	return sendErr
}

type scene struct {
	list *action.List
}

func newScene(e *termgpu.Engine, w, h uint32) (*scene, error) {
	vs, err := e.Compile(cornerShader())
	if err != nil {
		return nil, fmt.Errorf("vertex shader: %w", err)
	}
	gradient, err := e.Compile(gradientShader())
	if err != nil {
		return nil, fmt.Errorf("gradient shader: %w", err)
	}
	text, err := e.Compile(textShader())
	if err != nil {
		return nil, fmt.Errorf("text shader: %w", err)
	}

	vp := pipeline.Viewport{Width: w, Height: h}
	bindings := map[uint32]pipeline.VertexBinding{
		0: {Stride: vertexSize, StepMode: gputypes.VertexStepModeVertex},
	}
	attributes := map[uint32]pipeline.VertexAttribute{
		0: {Binding: 0, Type: shader.VectorOf(shader.Int(), 2)},
		1: {Binding: 0, Type: shader.VectorOf(shader.Float(), 3), Offset: 8},
	}
	background, err := pipeline.NewRenderPipeline(&pipeline.RenderPipelineDescriptor{
		Label:            "background",
		Vertex:           vs,
		Fragment:         gradient,
		VertexBindings:   bindings,
		VertexAttributes: attributes,
		FragmentAttributes: map[uint32]pipeline.FragmentAttribute{
			1: {Type: shader.VectorOf(shader.Float(), 3), InterpolationScale: [2]float32{0, 1}},
		},
		Viewport: vp,
	})
	if err != nil {
		return nil, err
	}
	foreground, err := pipeline.NewRenderPipeline(&pipeline.RenderPipelineDescriptor{
		Label:            "text",
		Vertex:           vs,
		Fragment:         text,
		VertexBindings:   bindings,
		VertexAttributes: attributes,
		Viewport:         vp,
	})
	if err != nil {
		return nil, err
	}

	fb := resource.NewFrameBuffer(w, h)
	textImg := resource.MustImage(resource.FormatT32SInt, gputypes.NewExtent2D(w-2*textMarginX, h-2*textMarginY))
	lines := resource.NewBuffer(4)

	pool := e.Resources()
	pool.AddImage(textImg)
	pool.AddBuffer(lines)
	bgQuad := pool.AddBuffer(quad(0, 0, 0.05, 0.1, 0.35, int32(w)-1, int32(h)-1, 0.2, 0.05, 0.25))
	textQuad := pool.AddBuffer(quad(textMarginX, textMarginY, 0, 0, 0, int32(w)-1-textMarginX, int32(h)-1-textMarginY, 0, 0, 0))
	bgBuf, err := pool.Buffer(bgQuad)
	if err != nil {
		return nil, err
	}
	textBuf, err := pool.Buffer(textQuad)
	if err != nil {
		return nil, err
	}

	list := action.NewList("panel")
	list.Rebuild(func(b *action.Builder) {
		b.Add(
			action.RunFixedFunction{Pipeline: &fixedfunc.TextSplit{Destination: textImg, LineCount: lines}},
			action.BindVertexBuffers{Buffers: []pipeline.VertexBuffer{{Buffer: bgBuf}}},
			action.Draw{Pipeline: background, FrameBuffer: fb, VertexCount: 2, InstanceCount: 1},
			action.BindVertexBuffers{Buffers: []pipeline.VertexBuffer{{Buffer: textBuf}}},
			action.Draw{
				Pipeline:      foreground,
				Attachments:   &shader.Attachments{Images: []*resource.Image{textImg}},
				FrameBuffer:   fb,
				VertexCount:   2,
				InstanceCount: 1,
			},
			action.Present{FrameBuffer: fb},
		)
	})
	return &scene{list: list}, nil
}

const (
	vertexSize  = 20
	textMarginX = 2
	textMarginY = 1
)

// quad encodes two vertices of {ivec2 position, vec3 colour}.
func quad(x0, y0 int32, r0, g0, b0 float32, x1, y1 int32, r1, g1, b1 float32) *resource.Buffer {
	buf := make([]byte, 2*vertexSize)
	put := func(off int, x, y int32, r, g, b float32) {
		binary.LittleEndian.PutUint32(buf[off:], uint32(x))
		binary.LittleEndian.PutUint32(buf[off+4:], uint32(y))
		binary.LittleEndian.PutUint32(buf[off+8:], math32.Float32bits(r))
		binary.LittleEndian.PutUint32(buf[off+12:], math32.Float32bits(g))
		binary.LittleEndian.PutUint32(buf[off+16:], math32.Float32bits(b))
	}
	put(0, x0, y0, r0, g0, b0)
	put(vertexSize, x1, y1, r1, g1, b1)
	return resource.NewBufferFrom(buf)
}

// cornerShader places a corner from location 0 and forwards the colour
// at location 1.
func cornerShader() *shader.Module {
	b := shader.NewModuleBuilder(gputypes.ShaderStageVertex)
	i32 := b.AddTypeInt()
	vec3 := b.AddTypeVector(b.AddTypeFloat(), 3)
	pos := b.AddLoad(b.AddInput(b.AddTypeVector(i32, 2), 0))
	b.AddStore(b.AddOutputBuiltin(shader.BuiltinPositionX), b.AddVectorShuffle(pos, pos, 0))
	b.AddStore(b.AddOutputBuiltin(shader.BuiltinPositionY), b.AddVectorShuffle(pos, pos, 1))
	b.AddStore(b.AddOutput(vec3, 1), b.AddLoad(b.AddInput(vec3, 1)))
	return b.MustBuild()
}

// gradientShader blanks the cell and paints the interpolated colour as
// its background.
func gradientShader() *shader.Module {
	b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
	i32 := b.AddTypeInt()
	vec3 := b.AddTypeVector(b.AddTypeFloat(), 3)
	b.AddStore(b.AddOutput(i32, 0), b.AddConstantInt(' '))
	b.AddStore(b.AddOutput(vec3, 2), b.AddLoad(b.AddInput(vec3, 1)))
	return b.MustBuild()
}

// textShader copies the wrapped text image into the panel interior in a
// fixed foreground colour, leaving the background plane untouched.
func textShader() *shader.Module {
	b := shader.NewModuleBuilder(gputypes.ShaderStageFragment)
	i32 := b.AddTypeInt()
	vec3 := b.AddTypeVector(b.AddTypeFloat(), 3)
	px := b.AddLoad(b.AddInputBuiltin(shader.BuiltinPositionX))
	py := b.AddLoad(b.AddInputBuiltin(shader.BuiltinPositionY))
	coord := b.AddCompositeConstruct(b.AddTypeVector(i32, 2),
		b.AddBinary(shader.OpSubtract, px, b.AddConstantInt(textMarginX)),
		b.AddBinary(shader.OpSubtract, py, b.AddConstantInt(textMarginY)))
	img := b.AddLoad(b.AddImage(resource.FormatT32SInt, 0))
	b.AddStore(b.AddOutput(i32, 0), b.AddGather(img, coord))
	b.AddStore(b.AddOutput(vec3, 1), b.AddConstantVector(0.95, 0.9, 0.7))
	return b.MustBuild()
}
