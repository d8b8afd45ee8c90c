package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store grava os uploads em disco e devolve a URL pública de cada arquivo.
type Store struct {
	dir       string
	urlPrefix string
}

func NewStore(dir, urlPrefix string) *Store {
	return &Store{
		dir:       dir,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}
}

// EnsureDir garante que o diretório de uploads existe
func (s *Store) EnsureDir() error {
	return os.MkdirAll(s.dir, 0755)
}

func (s *Store) Dir() string {
	return s.dir
}

// Save copia o arquivo enviado para um nome novo (uuid + extensão original).
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if err := s.EnsureDir(); err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("erro ao gravar %s: %w", fh.Filename, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", err
	}

	return s.urlPrefix + "/" + name, nil
}

// SaveAll grava todos os arquivos; se um falhar, os já gravados são apagados.
func (s *Store) SaveAll(files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := s.Save(fh)
		if err != nil {
			s.RemoveAll(urls)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// Path converte uma URL pública no caminho do arquivo. URLs de fora do
// diretório de uploads devolvem "".
func (s *Store) Path(url string) string {
	if url == "" || !strings.HasPrefix(url, s.urlPrefix+"/") {
		return ""
	}
	name := path.Base(url)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return filepath.Join(s.dir, name)
}

// Remove apaga o arquivo de uma URL. Arquivo inexistente não é erro.
func (s *Store) Remove(url string) error {
	p := s.Path(url)
	if p == "" {
		return nil
	}
	err := os.Remove(p)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RemoveAll apaga vários arquivos e devolve o primeiro erro encontrado.
func (s *Store) RemoveAll(urls []string) error {
	var first error
	for _, url := range urls {
		if err := s.Remove(url); err != nil && first == nil {
			first = err
		}
	}
	return first
}
