package ocr

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Edge bounds for the recognition bitmap: below minEdge tesseract loses
// small print, above maxEdge processing time grows without accuracy gain.
const (
	minEdge = 1000
	maxEdge = 2600
)

// otsuSeparability is the between-class variance ratio above which the
// histogram counts as bimodal and binarization helps.
const otsuSeparability = 0.5

// Preprocess prepares a packaging photo for recognition: grayscale, resize
// so the longer edge lands inside [minEdge, maxEdge], stretch contrast, and
// binarize when the intensity histogram is clearly bimodal.
func Preprocess(src image.Image) *image.Gray {
	gray := toGray(src)
	gray = resizeBounded(gray)
	stretchContrast(gray)
	if thresh, sep := otsuThreshold(gray); sep >= otsuSeparability {
		binarize(gray, thresh)
	}
	return gray
}

func toGray(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		return g
	}
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	return dst
}

func resizeBounded(src *image.Gray) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	longer := w
	if h > longer {
		longer = h
	}
	if longer == 0 {
		return src
	}

	scale := 1.0
	switch {
	case longer > maxEdge:
		scale = float64(maxEdge) / float64(longer)
	case longer < minEdge:
		scale = float64(minEdge) / float64(longer)
	default:
		return src
	}

	nw := int(float64(w)*scale + 0.5)
	nh := int(float64(h)*scale + 0.5)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewGray(image.Rect(0, 0, nw, nh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// stretchContrast remaps pixel intensities so the 1st..99th percentile span
// fills the full range, in place.
func stretchContrast(img *image.Gray) {
	hist := histogram(img)
	total := len(img.Pix)
	if total == 0 {
		return
	}

	lo, hi := percentileBounds(hist, total, 0.01, 0.99)
	if hi <= lo {
		return
	}
	span := float64(hi - lo)
	var lut [256]uint8
	for i := range lut {
		v := (float64(i) - float64(lo)) / span * 255
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		lut[i] = uint8(v)
	}
	for i, p := range img.Pix {
		img.Pix[i] = lut[p]
	}
}

func histogram(img *image.Gray) [256]int {
	var hist [256]int
	for _, p := range img.Pix {
		hist[p]++
	}
	return hist
}

func percentileBounds(hist [256]int, total int, pLo, pHi float64) (int, int) {
	loCount := int(float64(total) * pLo)
	hiCount := int(float64(total) * pHi)
	lo, hi := 0, 255
	cum := 0
	for i, c := range hist {
		cum += c
		if cum >= loCount {
			lo = i
			break
		}
	}
	cum = 0
	for i, c := range hist {
		cum += c
		if cum >= hiCount {
			hi = i
			break
		}
	}
	return lo, hi
}

// otsuThreshold returns the Otsu threshold and a 0..1 separability score
// (between-class variance over total variance).
func otsuThreshold(img *image.Gray) (uint8, float64) {
	hist := histogram(img)
	total := len(img.Pix)
	if total == 0 {
		return 127, 0
	}

	var sum float64
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}

	var sumB, wB float64
	var maxVar float64
	var thresh uint8
	for i := 0; i < 256; i++ {
		wB += float64(hist[i])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(i) * float64(hist[i])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > maxVar {
			maxVar = between
			thresh = uint8(i)
		}
	}

	mean := sum / float64(total)
	var totalVar float64
	for i, c := range hist {
		d := float64(i) - mean
		totalVar += d * d * float64(c)
	}
	if totalVar == 0 {
		return thresh, 0
	}
	// both variances carry a * total^2 weighting factor that cancels here
	return thresh, maxVar / (totalVar * float64(total))
}

func binarize(img *image.Gray, thresh uint8) {
	for i, p := range img.Pix {
		if p > thresh {
			img.Pix[i] = 255
		} else {
			img.Pix[i] = 0
		}
	}
}
