package utils

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// BuildHeaders returns the outbound header set: a User-Agent entry followed by
// the caller pairs. A pair whose name already exists replaces the old value.
func BuildHeaders(userAgent string, pairs [][2]string) (http.Header, error) {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	headers := make(http.Header)
	headers.Set("User-Agent", userAgent)
	for _, pair := range pairs {
		name, value := pair[0], pair[1]
		if !httpguts.ValidHeaderFieldName(name) {
			return nil, fmt.Errorf("%w: bad name %q", ErrInvalidHeader, name)
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return nil, fmt.Errorf("%w: bad value for %q", ErrInvalidHeader, name)
		}
		headers.Set(name, value)
	}
	return headers, nil
}

// ParseHeaderArgs turns "Name: value" strings into header pairs.
func ParseHeaderArgs(headers []string) ([][2]string, error) {
	var result [][2]string
	for _, header := range headers {
		key, value, ok := strings.Cut(header, ":")
		if !ok {
			return nil, fmt.Errorf("%w: expected 'Name: value', got %q", ErrInvalidHeader, header)
		}
		result = append(result, [2]string{strings.TrimSpace(key), strings.TrimSpace(value)})
	}
	return result, nil
}

// ResumeOffset reads N out of a "Range: bytes=N-" header. No header means the
// download starts from zero; any other range form is rejected, since the
// body would not line up with the end of the partial file.
func ResumeOffset(headers http.Header) (int64, error) {
	rangeHeader := headers.Get("Range")
	if rangeHeader == "" {
		return 0, nil
	}
	rangeStart, ok := strings.CutPrefix(rangeHeader, "bytes=")
	if ok {
		rangeStart, ok = strings.CutSuffix(rangeStart, "-")
	}
	if !ok {
		return 0, fmt.Errorf("%w: unsupported range %q, expected bytes=N-", ErrInvalidHeader, rangeHeader)
	}
	offset, err := strconv.ParseInt(rangeStart, 10, 64)
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("%w: unparsable range %q", ErrInvalidHeader, rangeHeader)
	}
	return offset, nil
}

// CompletedLength reads N out of the "Content-Range: bytes */N" header a
// server sends with 416 when the requested range starts past the end.
func CompletedLength(headers http.Header) (int64, bool) {
	size, ok := strings.CutPrefix(headers.Get("Content-Range"), "bytes */")
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(size, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func RangeHeader(offset int64) [2]string {
	return [2]string{"Range", fmt.Sprintf("bytes=%d-", offset)}
}

// LocalSize is the size of a partial file on disk, or 0 if there is none.
func LocalSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return 0
	}
	return info.Size()
}
