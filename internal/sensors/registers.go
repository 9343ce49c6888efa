// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import "fmt"

// MPU9250 registers used by the reader. Addresses follow the
// InvenSense register map, revision 1.6.
const (
	regSmplrtDiv    = 0x19 // sample rate = internal rate / (1 + div)
	regConfig       = 0x1A // DLPF_CFG in bits 2:0
	regGyroConfig   = 0x1B
	regAccelConfig  = 0x1C // ACCEL_FS_SEL in bits 4:3
	regAccelConfig2 = 0x1D
	regIntPinCfg    = 0x37 // BYPASS_EN is bit 1
	regAccelXOutH   = 0x3B // 6 bytes, big endian X/Y/Z
	regUserCtrl     = 0x6A // I2C_MST_EN is bit 5
	regPwrMgmt1     = 0x6B
	regWhoAmI       = 0x75
)

// AK8963 registers, reached directly on the bus once the MPU9250 bypass
// is enabled.
const (
	akWIA   = 0x00 // device ID, 0x48
	akST1   = 0x02 // DRDY is bit 0
	akHXL   = 0x03 // 6 bytes, little endian X/Y/Z, then ST2
	akST2   = 0x09 // HOFL is bit 3; reading it releases the data latch
	akCNTL1 = 0x0A
	akASAX  = 0x10 // 3 bytes of factory sensitivity adjustment
)

const (
	pwrReset     = 0x80
	pwrClockAuto = 0x01
	intBypassEn  = 0x02

	akPowerDown   = 0x00
	akFuseROM     = 0x0F
	akContinuous2 = 0x16 // 16 bit output, 100 Hz continuous

	st1DataReady = 0x01
	st2Overflow  = 0x08

	whoAmIMPU9250 = 0x71
	whoAmIMPU9255 = 0x73
	wiaAK8963     = 0x48
)

var registerNames = map[byte]string{
	regSmplrtDiv:    "SMPLRT_DIV",
	regConfig:       "CONFIG",
	regGyroConfig:   "GYRO_CONFIG",
	regAccelConfig:  "ACCEL_CONFIG",
	regAccelConfig2: "ACCEL_CONFIG2",
	regIntPinCfg:    "INT_PIN_CFG",
	regAccelXOutH:   "ACCEL_XOUT_H",
	regUserCtrl:     "USER_CTRL",
	regPwrMgmt1:     "PWR_MGMT_1",
	regWhoAmI:       "WHO_AM_I",
}

var magRegisterNames = map[byte]string{
	akWIA:   "WIA",
	akST1:   "ST1",
	akHXL:   "HXL",
	akST2:   "ST2",
	akCNTL1: "CNTL1",
	akASAX:  "ASAX",
}

// regName renders a register for log and error messages, e.g.
// "PWR_MGMT_1(0x6B)".
func regName(names map[byte]string, reg byte) string {
	if n, ok := names[reg]; ok {
		return fmt.Sprintf("%s(0x%02X)", n, reg)
	}
	return fmt.Sprintf("0x%02X", reg)
}
