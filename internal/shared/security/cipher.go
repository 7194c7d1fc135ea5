package security

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/go-think/openssl"
)

// Zip 压缩 ws 帧。
func Zip(data []byte) ([]byte, error) {
	var b bytes.Buffer
	gz, err := gzip.NewWriterLevel(&b, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := gz.Write(data); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func UnZip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// AesCBCEncrypt key 与 iv 均为 16 字节握手密钥。
func AesCBCEncrypt(src, key, iv []byte, padding string) ([]byte, error) {
	return openssl.AesCBCEncrypt(src, key, iv, padding)
}

func AesCBCDecrypt(src, key, iv []byte, padding string) ([]byte, error) {
	data, err := openssl.AesCBCDecrypt(src, key, iv, padding)
	if err != nil {
		return nil, err
	}
	if padding == openssl.ZEROS_PADDING {
		data = bytes.TrimRight(data, "\x00")
	}
	return data, nil
}
