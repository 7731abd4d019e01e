package effectchain

import (
	"github.com/cwbudde/algo-fxrack/dsp/effects"
	"github.com/cwbudde/algo-fxrack/dsp/filter/design"
	"github.com/cwbudde/algo-fxrack/dsp/params"
)

// Parameter positions inside each kind's layout.
const (
	filterType = iota
	filterCutoff
	filterQ
	filterGain
)

const (
	shaperMode = iota
	shaperDrive
	shaperBias
	shaperOutput
	shaperMix
)

const (
	crusherBits = iota
	crusherDownsample
	crusherMix
)

const (
	slewRise = iota
	slewFall
	slewMix
)

const (
	spectralBits = iota
	spectralCutoff
	spectralMix
)

const (
	clipperDrive = iota
	clipperCutoff
	clipperOutput
	clipperMix
)

func mixSpec() params.Spec {
	return params.Spec{Name: "Mix", Min: 0, Max: 1, Default: 1}
}

// Layout returns the parameter layout of kind k. Meters have none.
func Layout(k Kind) params.Layout {
	switch k {
	case KindFilter:
		return params.Layout{
			params.Choice("Type", design.Types(), int(design.TypeLowpass)),
			{Name: "Cutoff", Unit: "Hz", Min: 20, Max: 20000, Default: 1000},
			{Name: "Q", Min: 0.1, Max: 18, Default: 0.707},
			{Name: "Gain", Unit: "dB", Min: -24, Max: 24, Default: 0},
		}
	case KindWaveshaper:
		return params.Layout{
			params.Choice("Mode", effects.ShapeModes(), int(effects.ShapeSoftClip)),
			{Name: "Drive", Unit: "dB", Min: -24, Max: 36, Default: 0},
			{Name: "Bias", Min: -1, Max: 1, Default: 0},
			{Name: "Output", Unit: "dB", Min: -36, Max: 12, Default: 0},
			mixSpec(),
		}
	case KindBitcrusher:
		return params.Layout{
			{Name: "Bits", Min: 1, Max: 24, Default: 8},
			{Name: "Downsample", Min: 1, Max: 64, Default: 1, Steps: 63},
			mixSpec(),
		}
	case KindSlewLimiter:
		return params.Layout{
			{Name: "Rise", Unit: "ms", Min: 0.01, Max: 1000, Default: 1},
			{Name: "Fall", Unit: "ms", Min: 0.01, Max: 1000, Default: 1},
			mixSpec(),
		}
	case KindSpectrumBitcrusher:
		return params.Layout{
			{Name: "Bits", Min: 1, Max: 16, Default: 8},
			{Name: "Cutoff", Min: 0, Max: 1, Default: 0.5},
			mixSpec(),
		}
	case KindAnalogClipper:
		return params.Layout{
			{Name: "Drive", Unit: "dB", Min: -24, Max: 36, Default: 0},
			{Name: "Cutoff", Unit: "Hz", Min: 200, Max: 20000, Default: 7234},
			{Name: "Output", Unit: "dB", Min: -36, Max: 12, Default: 0},
			mixSpec(),
		}
	case KindOscilloscope:
		return params.Layout{}
	default:
		return nil
	}
}

// newParamStore registers the layout of every creatable kind.
func newParamStore() *params.Store {
	store := params.NewStore()

	for _, k := range CreatableKinds() {
		if err := store.Register(k.String(), Layout(k)); err != nil {
			panic(err)
		}
	}

	return store
}

// ChoiceLabels returns the option names of a choice parameter of kind k, or
// nil when name is not a choice parameter.
func ChoiceLabels(k Kind, name string) []string {
	var (
		n     int
		label func(i int) string
	)

	switch {
	case k == KindFilter && name == "Type":
		n, label = design.Types(), func(i int) string { return design.Type(i).String() }
	case k == KindWaveshaper && name == "Mode":
		n, label = effects.ShapeModes(), func(i int) string { return effects.ShapeMode(i).String() }
	default:
		return nil
	}

	out := make([]string, n)
	for i := range out {
		out[i] = label(i)
	}

	return out
}
