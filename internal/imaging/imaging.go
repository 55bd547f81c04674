package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// maxDimension — предел ширины/высоты сохраняемой картинки.
const maxDimension = 1024

// jpegQuality — качество перекодирования.
const jpegQuality = 85

// allowedMIME — принимаемые типы входных файлов. Тип определяется по байтам,
// заголовкам клиента не доверяем.
var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Process валидирует и нормализует загруженную картинку: сверяет
// фактический MIME, при необходимости уменьшает до maxDimension и всегда
// перекодирует в JPEG. На выходе — байты, готовые к записи на диск.
func Process(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxBytes)
	}

	detected := http.DetectContentType(data)
	if !allowedMIME[detected] {
		return nil, fmt.Errorf("unsupported image format %s: only JPEG and PNG are allowed", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	img = fit(img, maxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// fit уменьшает картинку так, чтобы обе стороны не превышали limit,
// сохраняя пропорции. Уже вписывающаяся возвращается как есть.
func fit(img image.Image, limit int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= limit && h <= limit {
		return img
	}

	nw, nh := limit, limit
	if w > h {
		nh = max(1, h*limit/w)
	} else {
		nw = max(1, w*limit/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
