package stages

import "testing"

func TestRenderQualityClamp(t *testing.T) {
	q := RenderQuality{DevicePixelRatio: 3, TextureScale: 0.1}.Clamp()
	if q.DevicePixelRatio != MaxDevicePixelRatio {
		t.Errorf("DevicePixelRatio = %f, want %f", q.DevicePixelRatio, MaxDevicePixelRatio)
	}
	if q.TextureScale != MinTextureScale {
		t.Errorf("TextureScale = %f, want %f", q.TextureScale, MinTextureScale)
	}
}

func TestReduceQuality(t *testing.T) {
	adj := reduceQuality(RenderQuality{DevicePixelRatio: 2, TextureScale: 1, Antialias: true, Shadows: true})
	if adj.Kind != AdjustReduce || !adj.DisableEffects {
		t.Fatalf("adj = %+v, want reduce with effects off", adj)
	}
	if !approxEqual(adj.DevicePixelRatio, 1.6, epsilon) || !approxEqual(adj.TextureScale, 0.8, epsilon) {
		t.Errorf("adj = %+v, want dpr 1.6 texture 0.8", adj)
	}
}

func TestReduceQualityFloors(t *testing.T) {
	adj := reduceQuality(RenderQuality{DevicePixelRatio: 0.55, TextureScale: 0.31})
	if adj.DevicePixelRatio != MinDevicePixelRatio {
		t.Errorf("DevicePixelRatio = %f, want floor %f", adj.DevicePixelRatio, MinDevicePixelRatio)
	}
	if adj.TextureScale != MinTextureScale {
		t.Errorf("TextureScale = %f, want floor %f", adj.TextureScale, MinTextureScale)
	}
}

func TestIncreaseQualityCeilings(t *testing.T) {
	adj := increaseQuality(RenderQuality{DevicePixelRatio: 1.95, TextureScale: 0.95}, 0, 0)
	if adj.DevicePixelRatio != MaxDevicePixelRatio || adj.TextureScale != MaxTextureScale {
		t.Errorf("adj = %+v, want capped at 2.0/1.0", adj)
	}
	if adj.DisableEffects {
		t.Error("increase must not touch effects")
	}

	tier := TierConfig(TierMid)
	adj = increaseQuality(RenderQuality{DevicePixelRatio: 1.45, TextureScale: 0.78}, tier.MaxDevicePixelRatio, tier.TextureQuality)
	if adj.DevicePixelRatio != 1.5 || adj.TextureScale != 0.8 {
		t.Errorf("adj = %+v, want capped at tier ceiling 1.5/0.8", adj)
	}
}

func TestQualityAdjustmentApply(t *testing.T) {
	q := RenderQuality{DevicePixelRatio: 1.5, TextureScale: 0.8, Antialias: true, Shadows: true}

	if got := (QualityAdjustment{}).Apply(q); got != q {
		t.Errorf("empty adjustment changed quality: %+v", got)
	}

	got := reduceQuality(q).Apply(q)
	if got.Antialias || got.Shadows {
		t.Error("reduction should disable antialias and shadows")
	}

	got = increaseQuality(RenderQuality{DevicePixelRatio: 1, TextureScale: 0.5}, 0, 0).Apply(RenderQuality{DevicePixelRatio: 1, TextureScale: 0.5})
	if got.Antialias || got.Shadows {
		t.Error("increase must never re-enable effects")
	}
	if !approxEqual(got.DevicePixelRatio, 1.1, epsilon) || !approxEqual(got.TextureScale, 0.55, epsilon) {
		t.Errorf("increase = %+v, want dpr 1.1 texture 0.55", got)
	}
}

func TestAdjustmentBoundsUnderIteration(t *testing.T) {
	q := RenderQuality{DevicePixelRatio: 2, TextureScale: 1}
	for i := 0; i < 50; i++ {
		q = reduceQuality(q).Apply(q)
		if q.DevicePixelRatio < MinDevicePixelRatio || q.TextureScale < MinTextureScale {
			t.Fatalf("iteration %d: %+v out of range", i, q)
		}
	}
	for i := 0; i < 50; i++ {
		q = increaseQuality(q, 0, 0).Apply(q)
		if q.DevicePixelRatio > MaxDevicePixelRatio || q.TextureScale > MaxTextureScale {
			t.Fatalf("iteration %d: %+v out of range", i, q)
		}
	}
	if q.DevicePixelRatio != MaxDevicePixelRatio || q.TextureScale != MaxTextureScale {
		t.Errorf("after many increases q = %+v, want max", q)
	}
}

func TestIncreaseQualityAtCeilingIsEmpty(t *testing.T) {
	if adj := increaseQuality(RenderQuality{DevicePixelRatio: 2, TextureScale: 1}, 0, 0); !adj.IsEmpty() {
		t.Errorf("at global max adj = %+v, want empty", adj)
	}
	tier := TierConfig(TierMid)
	if adj := increaseQuality(RenderQuality{DevicePixelRatio: 1.5, TextureScale: 0.8}, tier.MaxDevicePixelRatio, tier.TextureQuality); !adj.IsEmpty() {
		t.Errorf("at mid ceiling adj = %+v, want empty", adj)
	}
	// One axis still has room.
	if adj := increaseQuality(RenderQuality{DevicePixelRatio: 1.5, TextureScale: 0.6}, tier.MaxDevicePixelRatio, tier.TextureQuality); adj.Kind != AdjustIncrease {
		t.Errorf("adj = %+v, want increase", adj)
	}
}
