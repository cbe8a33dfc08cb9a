// Package usbenum discovers DVB frontend devices by walking /sys/class/dvb
// and, for USB tuners, resolves their vendor/product IDs to human-readable
// names from the system's usb.ids database.
package usbenum

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Device describes one discovered DVB frontend.
type Device struct {
	Adapter       int
	FrontendIndex int
	SysPath       string
	VendorID      string
	ProductID     string
	VendorName    string
	ProductName   string
}

// usbIDSPaths are the locations distributions install the USB ID database
// to; the first one that exists wins.
var usbIDSPaths = []string{
	"/usr/share/misc/usb.ids",
	"/usr/share/hwdata/usb.ids",
}

// Detect walks /sys/class/dvb for frontend entries and, where the parent
// device is USB, annotates each with vendor/product IDs and names.
func Detect() ([]Device, error) {
	entries, err := os.ReadDir("/sys/class/dvb")
	if err != nil {
		return nil, fmt.Errorf("usbenum: read /sys/class/dvb: %w", err)
	}

	ids := loadUSBNames()
	var devices []Device
	for _, entry := range entries {
		name := entry.Name()
		adapter, frontendIndex, ok := parseFrontendName(name)
		if !ok {
			continue
		}
		sysPath := filepath.Join("/sys/class/dvb", name, "device")
		dev := Device{Adapter: adapter, FrontendIndex: frontendIndex, SysPath: sysPath}
		if vendor, product, ok := findUSBParent(sysPath); ok {
			dev.VendorID = vendor
			dev.ProductID = product
			dev.VendorName, dev.ProductName = ids.lookup(vendor, product)
		}
		devices = append(devices, dev)
	}
	return devices, nil
}

// parseFrontendName parses a dvb class entry like "dvb0.frontend0" into its
// adapter and frontend indices.
func parseFrontendName(name string) (adapter, frontendIndex int, ok bool) {
	const prefix = "dvb"
	if !strings.HasPrefix(name, prefix) {
		return 0, 0, false
	}
	rest := name[len(prefix):]
	dot := strings.Index(rest, ".frontend")
	if dot < 0 {
		return 0, 0, false
	}
	a, err := strconv.Atoi(rest[:dot])
	if err != nil {
		return 0, 0, false
	}
	f, err := strconv.Atoi(rest[dot+len(".frontend"):])
	if err != nil {
		return 0, 0, false
	}
	return a, f, true
}

// findUSBParent walks up the sysfs device chain from path looking for
// idVendor/idProduct files, the way USB device nodes expose them on their
// own directory (not necessarily the leaf device directory).
func findUSBParent(path string) (vendor, product string, ok bool) {
	cur := path
	for i := 0; i < 8; i++ {
		resolved, err := filepath.EvalSymlinks(cur)
		if err != nil {
			return "", "", false
		}
		v, vErr := os.ReadFile(filepath.Join(resolved, "idVendor"))
		p, pErr := os.ReadFile(filepath.Join(resolved, "idProduct"))
		if vErr == nil && pErr == nil {
			return strings.TrimSpace(string(v)), strings.TrimSpace(string(p)), true
		}
		parent := filepath.Dir(resolved)
		if parent == cur || parent == "/" || parent == "." {
			return "", "", false
		}
		cur = parent
	}
	return "", "", false
}

// usbNames is a parsed usb.ids database: vendor ID -> (name, product ID ->
// name).
type usbNames struct {
	vendors  map[string]string
	products map[string]map[string]string
}

func (n *usbNames) lookup(vendor, product string) (vendorName, productName string) {
	if n == nil {
		return "", ""
	}
	vendorName = n.vendors[strings.ToLower(vendor)]
	if products, ok := n.products[strings.ToLower(vendor)]; ok {
		productName = products[strings.ToLower(product)]
	}
	return vendorName, productName
}

// loadUSBNames parses the first available usb.ids file. A missing database
// yields a usable-but-empty lookup rather than an error: device detection
// must still work without vendor/product names.
func loadUSBNames() *usbNames {
	for _, path := range usbIDSPaths {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		defer f.Close()
		return parseUSBIDs(f)
	}
	return &usbNames{vendors: map[string]string{}, products: map[string]map[string]string{}}
}

// parseUSBIDs parses usb.ids format: vendor lines start at column 0 ("ID  Name"),
// product lines are indented with a single tab ("\tID  Name").
func parseUSBIDs(f io.Reader) *usbNames {
	n := &usbNames{vendors: map[string]string{}, products: map[string]map[string]string{}}
	scanner := bufio.NewScanner(f)
	var curVendor string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "\t\t") {
			continue // interface-level entries; not needed here
		}
		if strings.HasPrefix(line, "\t") {
			id, name, ok := splitIDLine(strings.TrimPrefix(line, "\t"))
			if ok && curVendor != "" {
				if n.products[curVendor] == nil {
					n.products[curVendor] = map[string]string{}
				}
				n.products[curVendor][id] = name
			}
			continue
		}
		if line[0] == 'C' {
			break // device class section begins; vendor/product list is done
		}
		id, name, ok := splitIDLine(line)
		if ok {
			curVendor = id
			n.vendors[id] = name
		}
	}
	return n
}

func splitIDLine(line string) (id, name string, ok bool) {
	parts := strings.SplitN(line, "  ", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return strings.ToLower(strings.TrimSpace(parts[0])), strings.TrimSpace(parts[1]), true
}
