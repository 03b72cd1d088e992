package sensors

import (
	"periph.io/x/devices/v3/mpu9250"
)

// The upstream driver's constructor takes the transport by value. Pinning
// the signature here catches a regression to the pointer-taking variant,
// which only exists in forked drivers.
var _ func(mpu9250.Proto) (*mpu9250.MPU9250, error) = mpu9250.New

var _ Source = (*mpuSource)(nil)
