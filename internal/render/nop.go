package render

// NopScene satisfies Scene without drawing anything. Used by the headless
// client and the replayer.
type NopScene struct{}

func (NopScene) NewSprite(kind string) Sprite { return &nopSprite{} }
func (NopScene) NewLabel(text string) Sprite  { return &nopSprite{} }
func (NopScene) NewBar() Bar                  { return &nopBar{} }

// NopTerrain satisfies TerrainRenderer for headless runs.
type NopTerrain struct{}

func (NopTerrain) RenderTerrain(grid [][]int, seed int64) Surface { return &nopSurface{} }

type nopSprite struct{}

func (*nopSprite) SetPosition(x, y float64) {}
func (*nopSprite) SetRotation(rad float64)  {}
func (*nopSprite) SetAlpha(a float64)       {}
func (*nopSprite) SetScale(s float64)       {}
func (*nopSprite) SetAnimation(name string) {}
func (*nopSprite) Release()                 {}

type nopBar struct{}

func (*nopBar) SetPosition(x, y float64) {}
func (*nopBar) SetRatio(r float64)       {}
func (*nopBar) SetVisible(v bool)        {}
func (*nopBar) Release()                 {}

type nopSurface struct{}

func (*nopSurface) SetPosition(x, y float64) {}
func (*nopSurface) Release()                 {}
