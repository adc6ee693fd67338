package hx

import (
	"testing"

	"github.com/hxtool/hxplay/pkg/audio"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

// sampleStore builds a small graph:
//
//	E1 -> W1 -> F1
//	E2 -> P1 -> [W2 -> F2, W3 -> F3 (de variant F4)]
func sampleStore(t *testing.T) *Memory {
	t.Helper()
	pcm := audio.Canonical(22050, 1)
	entries := []*Entry{
		{ID: 0xE1, Class: ClassEvent, Data: &EventResourceData{Name: "Play_Door", Coefficients: [4]float32{1, 0, 0, 0}, Link: 0xA1}},
		{ID: 0xA1, Class: ClassWaveResource, Data: &WaveResourceData{Default: 0xF1}},
		{ID: 0xF1, Class: ClassWaveFileObject, Data: &WaveFileObject{Format: pcm, SampleCount: 2, Data: []byte{1, 0, 2, 0}}},
		{ID: 0xE2, Class: ClassEvent, Data: &EventResourceData{Name: "Play_Voice", Link: 0xB1}},
		{ID: 0xB1, Class: ClassProgram, Data: &ProgramResourceData{Links: []ID{0xA2, 0xA3}}},
		{ID: 0xA2, Class: ClassWaveResource, Data: &WaveResourceData{Default: 0xF2}},
		{ID: 0xA3, Class: ClassWaveResource, Data: &WaveResourceData{Default: 0xF3, Links: []WaveLink{{ID: 0xF4, Language: language.German}}}},
		{ID: 0xF2, Class: ClassWaveFileObject, Data: &WaveFileObject{Format: pcm, Data: []byte{3, 0}}},
		{ID: 0xF3, Class: ClassWaveFileObject, Data: &WaveFileObject{Format: pcm, Data: []byte{4, 0}}},
		{ID: 0xF4, Class: ClassWaveFileObject, Data: &WaveFileObject{Format: pcm, Data: []byte{5, 0}}},
		{ID: 0xC1, Class: ClassOther, ClassName: "CSwitchResourceData"},
	}
	m := NewMemory()
	for _, e := range entries {
		require.NoError(t, m.Append(e))
	}
	return m
}
