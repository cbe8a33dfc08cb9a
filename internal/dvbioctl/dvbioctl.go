// Package dvbioctl encodes Linux ioctl request numbers (the _IOR/_IOW
// macros from asm-generic/ioctl.h) and issues raw ioctl syscalls against
// DVB frontend/demux file descriptors. The argument struct layouts are
// kernel ABI (linux/dvb/frontend.h, linux/dvb/dmx.h) and live with their
// callers.
package dvbioctl

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	iocNone  = 0
	iocWrite = 1
	iocRead  = 2

	numberBits = 8
	typeBits   = 8
	sizeBits   = 14

	numberShift = 0
	typeShift   = numberShift + numberBits
	sizeShift   = typeShift + typeBits
	dirShift    = sizeShift + sizeBits
)

func ioc(dir, ioctlType, number, size uintptr) uintptr {
	return (dir << dirShift) | (ioctlType << typeShift) | (number << numberShift) | (size << sizeShift)
}

// IOW encodes a "write" (userland-to-kernel) ioctl request number.
func IOW(ioctlType byte, number, size uintptr) uintptr {
	return ioc(iocWrite, uintptr(ioctlType), number, size)
}

// IOR encodes a "read" (kernel-to-userland) ioctl request number.
func IOR(ioctlType byte, number, size uintptr) uintptr {
	return ioc(iocRead, uintptr(ioctlType), number, size)
}

// Do issues a raw ioctl syscall on fd with the given request number and
// argument pointer.
func Do(fd uintptr, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
