package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubRunner plays tesseract and pdftoppm. A TSV invocation is recognized
// by its trailing "tsv" config argument; a pdftoppm invocation creates the
// page images a real run would leave behind.
type stubRunner struct {
	text     string
	tsv      string
	pages    int
	err      error
	tsvCalls int
	argLog   [][]string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.argLog = append(s.argLog, append([]string{name}, args...))
	if s.err != nil {
		return nil, []byte("boom"), s.err
	}
	if strings.Contains(name, "pdftoppm") {
		prefix := args[len(args)-1]
		for i := 1; i <= s.pages; i++ {
			if err := os.WriteFile(prefix+"-"+strconv.Itoa(i)+".png", []byte("png"), 0o600); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	}
	if args[len(args)-1] == "tsv" {
		s.tsvCalls++
		return []byte(s.tsv), nil, nil
	}
	return []byte(s.text), nil, nil
}

// sampleTSV yields mean word confidence 85 (columns follow tesseract's
// 12-column TSV layout, conf second to last).
const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"5\t1\t1\t1\t1\t1\t10\t10\t50\t20\t90\twater,\n" +
	"5\t1\t1\t1\t1\t2\t70\t10\t50\t20\t80\tsugar\n" +
	"4\t1\t1\t1\t1\t0\t10\t10\t200\t20\t-1\t\n"

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func labelImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 60, 40))
	for i := range img.Pix {
		img.Pix[i] = 230
	}
	for x := 10; x < 50; x++ {
		img.SetGray(x, 20, color.Gray{Y: 20})
	}
	return encodePNG(t, img)
}

func TestExtractImage(t *testing.T) {
	runner := &stubRunner{
		text: "Ingredients: wheat flour, sugar, salt, cocoa butter",
		tsv:  sampleTSV,
	}
	e := NewExtractor(Config{}, testLogger()).WithRunner(runner)

	res, err := e.ExtractImage(context.Background(), labelImage(t))
	require.NoError(t, err)
	assert.Contains(t, res.Text, "wheat flour")
	assert.Equal(t, 1, res.Pages)

	// TSV mean 0.85 blended 70/30 with the shape heuristic (0.7 here:
	// comma-dense, letter-heavy, mentions "ingredient")
	assert.InDelta(t, 0.7*0.85+0.3*0.7, res.Confidence, 0.01)
	assert.Equal(t, 1, runner.tsvCalls)
}

func TestExtractImagePassesLanguageFlags(t *testing.T) {
	runner := &stubRunner{text: "water, sugar, salt, lemon", tsv: sampleTSV}
	e := NewExtractor(Config{Languages: "eng+deu", PSM: 6, OEM: 1}, testLogger()).WithRunner(runner)

	_, err := e.ExtractImage(context.Background(), labelImage(t))
	require.NoError(t, err)

	require.NotEmpty(t, runner.argLog)
	first := strings.Join(runner.argLog[0], " ")
	assert.Contains(t, first, "-l eng+deu")
	assert.Contains(t, first, "--psm 6")
	assert.Contains(t, first, "--oem 1")
}

func TestExtractImageTSVFailureFallsBackToHeuristic(t *testing.T) {
	runner := &stubRunner{
		text: "Ingredients: wheat flour, sugar, salt, cocoa butter",
		tsv:  "no usable rows",
	}
	e := NewExtractor(Config{}, testLogger()).WithRunner(runner)

	res, err := e.ExtractImage(context.Background(), labelImage(t))
	require.NoError(t, err)
	assert.InDelta(t, 0.7, res.Confidence, 0.01)
}

func TestExtractImageUndecodable(t *testing.T) {
	e := NewExtractor(Config{}, testLogger()).WithRunner(&stubRunner{})
	_, err := e.ExtractImage(context.Background(), []byte("not an image"))
	assert.Error(t, err)
}

func TestExtractImageRecognizerFailure(t *testing.T) {
	e := NewExtractor(Config{}, testLogger()).WithRunner(&stubRunner{err: errors.New("exec: not found")})
	_, err := e.ExtractImage(context.Background(), labelImage(t))
	assert.Error(t, err)
}

func TestExtractPDF(t *testing.T) {
	runner := &stubRunner{
		text:  "water, sugar, citric acid, natural flavor",
		tsv:   sampleTSV,
		pages: 2,
	}
	e := NewExtractor(Config{}, testLogger()).WithRunner(runner)

	res, err := e.ExtractPDF(context.Background(), []byte("%PDF-fake"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)
	assert.Contains(t, res.Text, "\f", "page break marker between rendered pages")
	assert.Greater(t, res.Confidence, float32(0))
}

func TestExtractPDFRespectsPageCap(t *testing.T) {
	runner := &stubRunner{
		text:  "water, sugar, salt",
		tsv:   sampleTSV,
		pages: 5,
	}
	e := NewExtractor(Config{MaxPages: 2}, testLogger()).WithRunner(runner)

	res, err := e.ExtractPDF(context.Background(), []byte("%PDF-fake"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)
}

func TestExtractPDFRasterizerFailure(t *testing.T) {
	e := NewExtractor(Config{}, testLogger()).WithRunner(&stubRunner{err: errors.New("exec: not found")})
	_, err := e.ExtractPDF(context.Background(), []byte("%PDF-fake"))
	assert.Error(t, err)
}

func TestPreprocessUpscalesSmallImages(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 200, 100))
	out := Preprocess(img)
	assert.Equal(t, 1000, out.Bounds().Dx(), "longer edge scaled up to the floor")
	assert.Equal(t, 500, out.Bounds().Dy())
}

func TestPreprocessDownscalesHugeImages(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 5200, 2600))
	out := Preprocess(img)
	assert.Equal(t, 2600, out.Bounds().Dx())
}

func TestPreprocessBinarizesBimodal(t *testing.T) {
	// half dark, half light: clearly bimodal, so output is pure black/white
	img := image.NewGray(image.Rect(0, 0, 1200, 10))
	for i := range img.Pix {
		if i%2 == 0 {
			img.Pix[i] = 30
		} else {
			img.Pix[i] = 220
		}
	}
	out := Preprocess(img)
	for _, p := range out.Pix {
		assert.True(t, p == 0 || p == 255, "pixel %d not binary", p)
	}
}

func TestHeuristicConfidence(t *testing.T) {
	assert.InDelta(t, 0.2, heuristicConfidence("zz"), 0.001)
	assert.InDelta(t, 0.7, heuristicConfidence("Ingredients: wheat flour, sugar, salt, cocoa butter"), 0.001)

	long := "Ingredients: " + strings.Repeat("wheat flour, sugar, salt, cocoa butter, ", 4)
	assert.InDelta(t, 0.8, heuristicConfidence(long), 0.001)
}

func TestOtsuThresholdFlatImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	_, sep := otsuThreshold(img)
	assert.Zero(t, sep, "uniform histogram has no separability")
}
