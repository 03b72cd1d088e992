package app

import (
	"fmt"
	"image"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/balance_board/internal/tilt"
)

// Magnitude readout band in the frame buffer. Face7x13 glyphs drawn at
// baseline y=52 stay inside pages 5 and 6 of the SSD1306 buffer, so a
// partial update only has to rewrite those bytes.
const (
	magBaselineY  = 52
	magFirstPage  = 5
	magPageCount  = 2
	displayWidth  = 128
	displayHeight = 64
)

// Display renders the stability readout on an SSD1306 OLED. It keeps a
// persistent frame buffer so numeric-only refreshes do not repaint the zone
// banner, which is what causes visible flicker.
type Display struct {
	dev *ssd1306.Dev
	img *image1bit.VerticalLSB
}

// OpenDisplay initializes the OLED on the default I2C bus.
func OpenDisplay() (*Display, error) {
	// Initialize periph
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus: %w", err)
	}

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize display: %w", err)
	}

	return &Display{
		dev: dev,
		img: image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight)),
	}, nil
}

func (d *Display) drawer() *font.Drawer {
	return &font.Drawer{
		Dst:  d.img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
}

func (d *Display) clear() {
	for i := range d.img.Pix {
		d.img.Pix[i] = 0
	}
}

func (d *Display) clearMagnitudeBand() {
	start := magFirstPage * displayWidth
	end := (magFirstPage + magPageCount) * displayWidth
	for i := start; i < end; i++ {
		d.img.Pix[i] = 0
	}
}

func (d *Display) push() error {
	return d.dev.Draw(d.dev.Bounds(), d.img, image.Point{})
}

// ShowSplash paints the startup screen.
func (d *Display) ShowSplash() error {
	d.clear()
	drawer := d.drawer()

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawBytes([]byte("Balance Board"))

	drawer.Dot = fixed.P(25, 43)
	drawer.DrawBytes([]byte("Step on to"))

	drawer.Dot = fixed.P(40, 56)
	drawer.DrawBytes([]byte("begin"))

	return d.push()
}

// RenderFull repaints the whole readout: zone banner plus magnitude line.
func (d *Display) RenderFull(zone tilt.Zone, magnitudeDeg float64) error {
	d.clear()
	drawer := d.drawer()

	drawer.Dot = fixed.P(0, 13)
	drawer.DrawBytes([]byte("Stability:"))

	drawer.Dot = fixed.P(20, 30)
	drawer.DrawBytes([]byte(strings.ToUpper(zone.String())))

	d.drawMagnitude(magnitudeDeg)
	return d.push()
}

// RenderPartial rewrites only the numeric readout, leaving the banner alone.
func (d *Display) RenderPartial(magnitudeDeg float64) error {
	d.clearMagnitudeBand()
	d.drawMagnitude(magnitudeDeg)
	return d.push()
}

func (d *Display) drawMagnitude(magnitudeDeg float64) {
	drawer := d.drawer()
	drawer.Dot = fixed.P(0, magBaselineY)
	drawer.DrawBytes([]byte(fmt.Sprintf("Tilt: %5.2f deg", magnitudeDeg)))
}

// RenderCalibrationConfirmed shows the calibration acknowledgement. The next
// zone decision repaints the normal readout.
func (d *Display) RenderCalibrationConfirmed() error {
	d.clear()
	drawer := d.drawer()

	drawer.Dot = fixed.P(15, 26)
	drawer.DrawBytes([]byte("Calibrated"))

	drawer.Dot = fixed.P(0, 43)
	drawer.DrawBytes([]byte("Reference saved"))

	return d.push()
}
