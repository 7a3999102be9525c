package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/charmap"
)

type InputType string

const (
	InputPDF  InputType = "pdf"
	InputDOCX InputType = "docx"
	InputTXT  InputType = "txt"
)

// ReadSubmissionFile đọc nội dung file đính kèm để đưa vào prompt chấm bài.
// Không bao giờ trả lỗi cho caller: file hỏng/thiếu/không đọc được thì thay
// bằng chuỗi giải thích, luồng chấm vẫn chạy tiếp.
func ReadSubmissionFile(path string) string {
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		log.Printf("submission file missing: %s (%v)", path, err)
		return fmt.Sprintf("[File %q could not be found on the server]", filepath.Base(path))
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt":
		text, err := readTextFile(path)
		if err != nil {
			log.Printf("cannot read text file %s: %v", path, err)
			return fmt.Sprintf("[File %q exists but could not be read]", filepath.Base(path))
		}
		return text
	case ".pdf":
		text, err := extractTextFromPDF(path)
		if err != nil {
			log.Printf("cannot extract PDF %s: %v", path, err)
			return fmt.Sprintf("[PDF file %q could not be parsed]", filepath.Base(path))
		}
		return text
	case ".doc", ".docx":
		text, err := extractTextFromDOCX(path)
		if err != nil {
			log.Printf("cannot extract DOCX %s: %v", path, err)
			return fmt.Sprintf("[Document %q could not be parsed]", filepath.Base(path))
		}
		return text
	default:
		// Ảnh và định dạng khác không đọc được thành text
		return fmt.Sprintf("[Submitted file %q is a binary attachment; its content cannot be shown as text]", filepath.Base(path))
	}
}

// ExtractUploadedText trích văn bản từ file upload còn trong memory
// (rubric/bài tập đính kèm), chưa ghi ra đĩa
func ExtractUploadedText(file multipart.File, size int64, inputType InputType) (string, error) {
	data, err := io.ReadAll(io.LimitReader(file, size))
	if err != nil {
		return "", err
	}

	switch inputType {
	case InputTXT:
		return decodeText(data)
	case InputPDF:
		reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return "", fmt.Errorf("cannot create PDF reader: %w", err)
		}
		return collectPDFText(reader), nil
	case InputDOCX:
		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return "", err
		}
		return readDOCXDocument(zr.File)
	default:
		return "", fmt.Errorf("unsupported input type %q", inputType)
	}
}

// readTextFile đọc UTF-8, dữ liệu cũ không hợp lệ thì decode lại theo ISO-8859-1
func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return decodeText(data)
}

func decodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func extractTextFromPDF(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	reader, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("cannot create PDF reader: %w", err)
	}
	return collectPDFText(reader), nil
}

func collectPDFText(reader *pdf.Reader) string {
	var textBuilder bytes.Buffer
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		textBuilder.WriteString(content)
	}
	return textBuilder.String()
}

func extractTextFromDOCX(path string) (string, error) {
	// .docx là file zip, văn bản nằm trong word/document.xml
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer r.Close()
	return readDOCXDocument(r.File)
}

func readDOCXDocument(files []*zip.File) (string, error) {
	var docFile *zip.File
	for _, f := range files {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("word/document.xml not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	// Trích các tag <w:t>
	var buf bytes.Buffer
	decoder := xml.NewDecoder(rc)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "t" { // <w:t>
				var text string
				if err := decoder.DecodeElement(&text, &se); err == nil {
					buf.WriteString(text + " ")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String()), nil
}
