package classify

import (
	"bytes"
	"errors"
	"io"
	"os"
	"unicode/utf8"

	"github.com/tyemirov/cli2text/internal/utils"
)

// sniffLength defines the maximum number of bytes read when detecting binary content.
const sniffLength = 8000

// BinaryDetector decides whether the file at path holds binary content.
type BinaryDetector interface {
	IsBinary(path string) (bool, error)
}

// ContentDetector sniffs a bounded prefix of the file.
type ContentDetector struct{}

// IsBinary reads up to sniffLength bytes from path and applies IsBinaryContent.
func (ContentDetector) IsBinary(path string) (bool, error) {
	fileHandle, openError := os.Open(path)
	if openError != nil {
		return false, openError
	}
	defer fileHandle.Close()

	buffer := make([]byte, sniffLength)
	bytesRead, readError := io.ReadFull(fileHandle, buffer)
	if readError != nil && !errors.Is(readError, io.EOF) && !errors.Is(readError, io.ErrUnexpectedEOF) {
		return false, readError
	}
	return IsBinaryContent(buffer[:bytesRead], bytesRead == sniffLength), nil
}

var unicodeByteOrderMarks = [][]byte{
	{0xEF, 0xBB, 0xBF},
	{0x00, 0x00, 0xFE, 0xFF},
	{0xFF, 0xFE, 0x00, 0x00},
	{0xFE, 0xFF},
	{0xFF, 0xFE},
}

// pdfSignature opens every PDF document, whose body is otherwise mostly printable.
var pdfSignature = []byte("%PDF-")

// suspiciousPercentLimit is the share of suspicious bytes above which data is binary.
const suspiciousPercentLimit = 10

// minimumBytesBeforeVerdict is how far the scan runs before it may stop early.
const minimumBytesBeforeVerdict = 32

// IsBinaryContent reports whether data appears to contain binary data.
// A NUL byte marks binary content, and so does a share of suspicious bytes above ten percent.
// Bytes below 0x20 other than BEL through SO are suspicious, as is every byte above 0x7F
// that does not open a well-formed UTF-8 sequence. Data opening with a Unicode byte order
// mark is text. When truncated is true a multi-byte rune cut at the end of data is tolerated.
func IsBinaryContent(data []byte, truncated bool) bool {
	if len(data) == 0 {
		return false
	}
	for _, byteOrderMark := range unicodeByteOrderMarks {
		if bytes.HasPrefix(data, byteOrderMark) {
			return false
		}
	}
	if bytes.HasPrefix(data, pdfSignature) {
		return true
	}
	if truncated {
		data = trimPartialRune(data)
	}

	totalBytes := len(data)
	suspiciousBytes := 0
	for index := 0; index < totalBytes; index++ {
		current := data[index]
		if current == 0 {
			return true
		}
		if !isSuspiciousByte(current) {
			continue
		}
		if width := utf8LeadWidth(current); width > 1 && index+width-1 < totalBytes {
			if isContinuationRun(data[index+1 : index+width]) {
				index += width - 1
				continue
			}
			index++
		}
		suspiciousBytes++
		if index >= minimumBytesBeforeVerdict && exceedsSuspiciousLimit(suspiciousBytes, totalBytes) {
			return true
		}
	}
	return exceedsSuspiciousLimit(suspiciousBytes, totalBytes)
}

func isSuspiciousByte(value byte) bool {
	return (value < 7 || value > 14) && (value < 32 || value > 127)
}

// utf8LeadWidth returns the sequence length announced by a UTF-8 lead byte, or 1 for any other byte.
func utf8LeadWidth(value byte) int {
	switch {
	case value >= 0xC2 && value <= 0xDF:
		return 2
	case value >= 0xE0 && value <= 0xEF:
		return 3
	case value >= 0xF0 && value <= 0xF7:
		return 4
	default:
		return 1
	}
}

func isContinuationRun(run []byte) bool {
	for _, value := range run {
		if value < 0x80 || value > 0xBF {
			return false
		}
	}
	return true
}

func exceedsSuspiciousLimit(suspiciousBytes int, totalBytes int) bool {
	return totalBytes > 0 && suspiciousBytes*100 > suspiciousPercentLimit*totalBytes
}

// trimPartialRune drops an incomplete UTF-8 sequence at the end of data.
func trimPartialRune(data []byte) []byte {
	for lookback := 1; lookback < utf8.UTFMax && lookback <= len(data); lookback++ {
		start := len(data) - lookback
		if !utf8.RuneStart(data[start]) {
			continue
		}
		if !utf8.FullRune(data[start:]) {
			return data[:start]
		}
		return data
	}
	return data
}

// defaultBinaryExtensions lists extensions of common compiled, archived, and media formats.
var defaultBinaryExtensions = NewSet(
	".exe", ".dll", ".so", ".dylib", ".a", ".o", ".obj", ".lib", ".bin", ".class", ".jar", ".pyc", ".wasm",
	".zip", ".tar", ".gz", ".tgz", ".bz2", ".xz", ".7z", ".rar", ".zst",
	".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
	".ico", ".mp3", ".mp4", ".wav", ".avi", ".mov", ".mkv", ".flac", ".ogg",
	".ttf", ".otf", ".woff", ".woff2", ".eot",
	".sqlite", ".db", ".dat",
)

// ExtensionDetector classifies files by extension alone and never reads them.
type ExtensionDetector struct {
	Extensions *Set
}

// IsBinary reports whether the extension of path is listed as binary.
func (detector ExtensionDetector) IsBinary(path string) (bool, error) {
	extensions := defaultBinaryExtensions
	if detector.Extensions != nil {
		extensions = *detector.Extensions
	}
	return extensions.Contains(utils.FileExtension(path)), nil
}

var (
	_ BinaryDetector = ContentDetector{}
	_ BinaryDetector = ExtensionDetector{}
)
