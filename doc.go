// Package stages keeps a 2D stage looking right on any display by adapting
// rendering quality to the device and to measured frame rate. It runs on
// [Ebitengine].
//
// All content is authored against a fixed virtual stage of [StageWidth] x
// [StageHeight] units. The package provides the three pieces that sit between
// that stage and the hardware, plus an [Engine] that wires them together:
//
//   - [Classifier] sorts the device into a low, mid or high [Tier] once, from
//     the GPU renderer and vendor strings and the heap limit, and derives the
//     initial [RenderQuality].
//   - [Viewport] keeps a "cover" [ViewportTransform] between the window and the
//     stage and converts pointer positions into stage and world coordinates.
//   - [Monitor] samples frame rate in one-second windows and recommends
//     [QualityAdjustment] steps with hysteresis: reductions need five samples,
//     increases ten.
//
// # Quick start
//
// The simplest way to get started is [Run], which opens a window and drives
// the engine for you:
//
//	cfg, err := stages.LoadConfig("")
//	if err != nil {
//		log.Fatal(err)
//	}
//	cfg.Capabilities = stages.EbitenCapabilities{}
//	cfg.PixelRatio = stages.EbitenPixelRatio{}
//	engine := stages.NewEngine(cfg)
//	host := stages.NewHost(engine, stages.HostOptions{
//		Draw: func(stage *ebiten.Image, geoM ebiten.GeoM) {
//			// draw in stage units, concatenating geoM
//		},
//	})
//	stages.Run(host, stages.RunConfig{Title: "My Game", Width: 1280, Height: 720})
//
// For full control, build an [Engine] yourself, bind its viewport with
// [Engine.InitializeTransform] and call [Engine.Update] once per rendered
// frame. State changes arrive through [Listener] values passed to [NewEngine]:
//
//	engine := stages.NewEngine(cfg, stages.ListenerFuncs{
//		OnPerformanceChange: func(adj stages.QualityAdjustment) {
//			quality = adj.Apply(quality)
//		},
//	})
//
// # Configuration
//
// [Config] is read from YAML by [LoadConfig]. Every field is optional. See
// stages.example.yaml for the full set.
//
// # Scenarios
//
// [Scenario] replays a JSON script of resizes, frame runs at fixed rates, tier
// overrides and pointer positions against an engine using a synthetic clock,
// which makes the adaptation loop testable without a window.
//
// Native GPU probing through WebGPU lives in stages/native, and a Donburi
// event bridge in stages/ecs.
//
// [Ebitengine]: https://ebitengine.org
package stages
