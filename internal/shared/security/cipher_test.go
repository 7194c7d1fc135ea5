package security

import (
	"bytes"
	"testing"

	"github.com/go-think/openssl"
)

func TestZipUnZip(t *testing.T) {
	src := []byte(`{"seq":1,"name":"game.action","msg":{"action":"skip"}}`)
	z, err := Zip(src)
	if err != nil {
		t.Fatalf("Zip err=%v", err)
	}
	out, err := UnZip(z)
	if err != nil {
		t.Fatalf("UnZip err=%v", err)
	}
	if !bytes.Equal(out, src) {
		t.Fatalf("解压结果不一致")
	}
	if _, err := UnZip([]byte("not gzip")); err == nil {
		t.Fatalf("非 gzip 数据应报错")
	}
}

func TestAesCBC_零填充(t *testing.T) {
	key := []byte("0123456789abcdef")
	src := []byte(`{"name":"heartbeat"}`)
	enc, err := AesCBCEncrypt(src, key, key, openssl.ZEROS_PADDING)
	if err != nil {
		t.Fatalf("encrypt err=%v", err)
	}
	dec, err := AesCBCDecrypt(enc, key, key, openssl.ZEROS_PADDING)
	if err != nil {
		t.Fatalf("decrypt err=%v", err)
	}
	if !bytes.Equal(dec, src) {
		t.Fatalf("解密结果不一致 got=%q", dec)
	}
}
