package audio

import (
	"encoding/binary"
	"testing"
)

func TestEncodeWAVPCM16LEHeader(t *testing.T) {
	pcm := make([]byte, 3200)
	wav, err := EncodeWAVPCM16LE(pcm, 16000)
	if err != nil {
		t.Fatalf("EncodeWAVPCM16LE() error = %v", err)
	}
	if len(wav) != 44+len(pcm) {
		t.Fatalf("wav length = %d, want %d", len(wav), 44+len(pcm))
	}
	if string(wav[:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatalf("missing RIFF/WAVE markers: %q %q", wav[:4], wav[8:12])
	}
	if sr := binary.LittleEndian.Uint32(wav[24:28]); sr != 16000 {
		t.Fatalf("sample rate = %d, want 16000", sr)
	}
	if ds := binary.LittleEndian.Uint32(wav[40:44]); ds != uint32(len(pcm)) {
		t.Fatalf("data size = %d, want %d", ds, len(pcm))
	}
}

func TestDetectMIME(t *testing.T) {
	wav, err := EncodeWAVPCM16LE([]byte{0, 0}, 24000)
	if err != nil {
		t.Fatalf("EncodeWAVPCM16LE() error = %v", err)
	}
	cases := []struct {
		name string
		data []byte
		want string
	}{
		{"wav", wav, "audio/wav"},
		{"mp3 id3", []byte("ID3\x04rest"), "audio/mpeg"},
		{"mp3 frame sync", []byte{0xFF, 0xFB, 0x90, 0x00}, "audio/mpeg"},
		{"ogg", []byte("OggS\x00rest"), "audio/ogg"},
		{"unknown", []byte{1, 2, 3}, "application/octet-stream"},
	}
	for _, tc := range cases {
		if got := DetectMIME(tc.data); got != tc.want {
			t.Fatalf("DetectMIME(%s) = %q, want %q", tc.name, got, tc.want)
		}
	}
}
