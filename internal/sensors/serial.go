package sensors

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/balance_board/internal/tilt"
)

// Serial-attached boards stream NMEA-style accelerometer sentences:
//
//	$BBACC,<ax>,<ay>,<az>*hh
//
// with components in g.
const accSentenceType = "ACC"

// ACC is the parsed $BBACC sentence.
type ACC struct {
	nmea.BaseSentence
	Ax float64
	Ay float64
	Az float64
}

var registerACCOnce sync.Once

func registerACCParser() {
	registerACCOnce.Do(func() {
		nmea.MustRegisterParser(accSentenceType, func(s nmea.BaseSentence) (nmea.Sentence, error) {
			p := nmea.NewParser(s)
			return ACC{
				BaseSentence: s,
				Ax:           p.Float64(0, "ax"),
				Ay:           p.Float64(1, "ay"),
				Az:           p.Float64(2, "az"),
			}, p.Err()
		})
	})
}

// ParseACCLine parses one sentence line into a sample.
func ParseACCLine(line string) (tilt.AccelSample, error) {
	registerACCParser()

	sentence, err := nmea.Parse(strings.TrimSpace(line))
	if err != nil {
		return tilt.AccelSample{}, err
	}
	acc, ok := sentence.(ACC)
	if !ok {
		return tilt.AccelSample{}, fmt.Errorf("unexpected sentence type %s", sentence.DataType())
	}
	return tilt.AccelSample{Ax: acc.Ax, Ay: acc.Ay, Az: acc.Az}, nil
}

type serialSource struct {
	mu     sync.Mutex
	latest tilt.AccelSample
	fresh  bool

	port io.ReadWriteCloser
}

// NewSerialSource opens the serial port and starts reading sentences in the
// background. TryAcquire hands out each received sample at most once, so a
// quiet line reads as "no new data" rather than a frozen repeat.
func NewSerialSource(portName string, baudRate int) (Source, error) {
	registerACCParser()

	serialOpts := serial.OpenOptions{
		PortName:        portName,
		BaudRate:        uint(baudRate),
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}
	log.Printf("sensors: serial port opened on %s at %d baud", portName, baudRate)

	s := &serialSource{port: port}
	go s.readLoop()
	return s, nil
}

func (s *serialSource) readLoop() {
	reader := bufio.NewReader(s.port)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			log.Printf("sensors: serial read error: %v", err)
			return
		}

		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "$") {
			continue
		}

		sample, err := ParseACCLine(line)
		if err != nil {
			// Noisy line or partial sentence; skip it.
			continue
		}

		s.mu.Lock()
		s.latest = sample
		s.fresh = true
		s.mu.Unlock()
	}
}

func (s *serialSource) TryAcquire() (tilt.AccelSample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.fresh {
		return tilt.AccelSample{}, false
	}
	s.fresh = false
	return s.latest, true
}
