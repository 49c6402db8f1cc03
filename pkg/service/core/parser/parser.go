package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const (
	HeaderContentType            = "Content-Type"
	ContentTypeMultipartFormData = "multipart/form-data"
	ContentTypeOctetStream       = "application/octet-stream"
)

var ErrNotExist = errors.New("object not exist")

// Object represents a generic object in a multipart form
type Object struct {
	Name string
	Data []byte
}

// FromJSON unmarshals the data of the object into the provided value
func (o *Object) FromJSON(v interface{}) error {
	err := json.Unmarshal(o.Data, v)
	if err != nil {
		return fmt.Errorf("unmarshalling object %s data: %w", o.Name, err)
	}

	return nil
}

// File represents a file in a multipart form
type File struct {
	FormName    string
	FileName    string
	ContentType string
	Reader      io.ReadCloser
}

// ReadAll reads the file content and releases the underlying temporary file
func (f *File) ReadAll() ([]byte, error) {
	defer func() {
		_ = f.Reader.Close()
	}()

	data, err := io.ReadAll(f.Reader)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", f.FileName, err)
	}

	return data, nil
}

// DataReadCloser provides a transparent way to read data from a temporary
// file on disk
type DataReadCloser struct {
	file *os.File
}

// Read the data from the temporary file
func (f *DataReadCloser) Read(p []byte) (n int, err error) {
	return f.file.Read(p)
}

// Close and remove the temporary file
func (f *DataReadCloser) Close() error {
	defer func() {
		_ = os.Remove(f.file.Name())
	}()

	err := f.file.Close()
	if err != nil {
		return err
	}

	return nil
}

type MultipartForm struct {
	r       *http.Request
	objects map[string]*Object
	files   []*File
}

func (f *MultipartForm) DeserializedObject(name string, v interface{}) error {
	o, ok := f.objects[name]
	if !ok {
		return ErrNotExist
	}

	return o.FromJSON(v)
}

func (f *MultipartForm) Object(name string) (*Object, error) {
	o, ok := f.objects[name]
	if !ok {
		return nil, ErrNotExist
	}

	return o, nil
}

// Files returns the uploaded files in the order they were sent
func (f *MultipartForm) Files() []*File {
	return f.files
}

// Close releases the temporary files that have not been read
func (f *MultipartForm) Close() {
	for _, file := range f.files {
		_ = file.Reader.Close()
	}
}

// Process reads the form body and parses it into objects or files, where
// objectNames is a list of form names that should be treated as objects
// Note: objectNames take precedence over files
func (f *MultipartForm) Process(objectNames []string) error {
	reader, err := f.r.MultipartReader()
	if err != nil {
		return fmt.Errorf("creating multipart reader: %w", err)
	}

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}

		if err != nil {
			return fmt.Errorf("reading next part: %w", err)
		}

		name := part.FormName()

		// If the part has no name, we skip it
		if len(name) == 0 {
			continue
		}

		// Objects take precedence over files
		if slices.Contains(objectNames, name) {
			data, err := io.ReadAll(part)
			if err != nil {
				return fmt.Errorf("reading part data: %w", err)
			}

			f.objects[name] = &Object{
				Name: name,
				Data: data,
			}

			continue
		}

		// Plain form values are neither objects nor files
		fileName := part.FileName()
		if len(fileName) == 0 {
			continue
		}

		file, err := os.CreateTemp("", "brd-backend-form-data")
		if err != nil {
			return fmt.Errorf("creating temporary file: %w", err)
		}

		// Copy the part data to the temporary file in a streaming fashion
		// to avoid loading the entire file into memory
		_, err = io.Copy(file, part)
		if err != nil {
			_ = file.Close()
			_ = os.Remove(file.Name())

			return fmt.Errorf("copying part data to file: %w", err)
		}

		// Seek to the start of the file
		_, err = file.Seek(0, io.SeekStart)
		if err != nil {
			return fmt.Errorf("seeking to start of file: %w", err)
		}

		f.files = append(f.files, &File{
			FormName:    name,
			FileName:    fileName,
			ContentType: ContentTypeOf(fileName, part.Header.Get(HeaderContentType)),
			Reader: &DataReadCloser{
				file: file,
			},
		})
	}

	return nil
}

// ContentTypeOf returns the declared media type, falling back to the file
// extension when the client only sent a generic type
func ContentTypeOf(fileName, declared string) string {
	declared = strings.TrimSpace(declared)
	if len(declared) > 0 && declared != ContentTypeOctetStream {
		return declared
	}

	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName))); len(t) > 0 {
		return t
	}

	return ContentTypeOctetStream
}

// MultipartFormFromRequest prepares a multipart form for processing, a
// positive maxBytes limits the size of the request body
func MultipartFormFromRequest(r *http.Request, maxBytes int64) (*MultipartForm, error) {
	contentType := r.Header.Get(HeaderContentType)
	if !strings.Contains(contentType, ContentTypeMultipartFormData) {
		return nil, fmt.Errorf("expected %s to be %s ", HeaderContentType, ContentTypeMultipartFormData)
	}

	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
	}

	return &MultipartForm{
		r:       r,
		objects: map[string]*Object{},
	}, nil
}
