// Package framebridge plays time-indexed animation documents on [Ebitengine]
// through a small retained compositor.
//
// The pieces form one chain: a [Compositor] hosts layers and interpolates
// their attributes, a [FrameLayer] resolves the frame the compositor is
// presenting and pushes it into an [Engine], and the engine ([RenderTree] by
// default) evaluates its node graph for that frame.
//
// # Quick start
//
//	doc, err := framebridge.LoadDocument(afero.NewOsFs(), "intro.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//	comp := framebridge.NewCompositor()
//	layer := framebridge.NewFrameLayer(doc, nil, nil, nil)
//	comp.AddLayer(layer)
//	layer.Play(doc.StartFrame, doc.EndFrame, true)
//	framebridge.Run(comp, framebridge.RunConfig{Title: "intro", Width: 640, Height: 480})
//
// # Frames
//
// The current frame is an ordinary layer attribute ([CurrentFrameKey]).
// Setting it inside [Compositor.Animate], or calling [FrameLayer.Play],
// attaches a tween that the compositor advances on every [Compositor.Tick].
// The interpolated value lives on the layer's presentation snapshot, and
// [FrameLayer.Display] reads it from there, so the engine always renders the
// frame that is actually on screen. With [FrameLayer.SetRespectFrameRate]
// the frame is floored to whole document frames first.
//
// # Keypaths
//
// Every animated property in the render tree is addressed by a [Keypath]
// such as "Layer 1.Transform.Opacity". Segments may be "*" (one segment) or
// "**" (any number of segments):
//
//	layer.SetValueProvider(framebridge.StaticValue(framebridge.FloatValue(25)),
//		framebridge.ParseKeypath("**.Opacity"))
//
// Overrides are consulted on the next display pass; the tree is never rebuilt.
//
// # Threading
//
// Display resolution only runs on the goroutine bound with [BindUIThread]
// (done by [NewCompositor]). Everything else is unsynchronized and belongs on
// that same goroutine.
//
// # Debugging
//
// [SetDebugMode] turns on node sanity checks, [FormatHierarchy] dumps a node
// tree, and [NewStatsLayer] overlays FPS and frame numbers. For visual
// checks, a [Script] loaded with [LoadScript] seeks, plays and queues
// [Compositor.Screenshot] captures tick by tick.
//
// [Ebitengine]: https://ebitengine.org
package framebridge
