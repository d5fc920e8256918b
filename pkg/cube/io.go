package cube

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"

	"cubefind/internal/logging"
	"cubefind/pkg/cubeerr"
	"cubefind/pkg/header"
	"cubefind/pkg/region"
)

// Load reads a cube from a FITS-subset file at path. If r is non-nil,
// only the sub-cube it describes is read and the header's NAXIS*/CRPIX*
// keywords are rewritten to match, per the reference's DataCube_load.
// log may be nil.
func Load(path string, r *region.Region, log *logging.Logger) (*Cube, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, cubeerr.Wrapf(cubeerr.ErrFileAccess, "opening %q: %v", path, err)
	}
	defer f.Close()

	log.Info("cube", "opening FITS-subset file", map[string]any{"path": path})

	hdr, err := readHeader(f)
	if err != nil {
		return nil, err
	}
	dataStart, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, cubeerr.Wrapf(cubeerr.ErrFileAccess, "locating data segment: %v", err)
	}

	dt := DType(hdr.GetInt("BITPIX"))
	if !validDType(dt) {
		return nil, cubeerr.Wrapf(cubeerr.ErrFormat, "invalid BITPIX keyword %d", dt)
	}
	dim := int(hdr.GetInt("NAXIS"))
	if dim < 1 || dim > 4 {
		return nil, cubeerr.Wrapf(cubeerr.ErrFormat, "only 1-4 dimensional FITS files are supported, got NAXIS=%d", dim)
	}
	nx := int(hdr.GetInt("NAXIS1"))
	ny := 1
	nz := 1
	if dim >= 2 {
		ny = int(hdr.GetInt("NAXIS2"))
	}
	if dim >= 3 {
		nz = int(hdr.GetInt("NAXIS3"))
	}
	if dim >= 4 && hdr.GetInt("NAXIS4") != 1 {
		return nil, cubeerr.Wrapf(cubeerr.ErrFormat, "the size of the 4th axis must be 1")
	}

	bscale := hdr.GetFloat("BSCALE")
	bzero := hdr.GetFloat("BZERO")
	if !(math.IsNaN(bscale) || bscale == 1.0) || !(math.IsNaN(bzero) || bzero == 0.0) {
		return nil, cubeerr.Wrapf(cubeerr.ErrUserInput, "non-trivial BSCALE/BZERO is not supported")
	}

	c := &Cube{Header: hdr, Type: dt, Nx: nx, Ny: ny, Nz: nz}
	word := wordSize(dt)

	if r == nil {
		c.alloc(nx * ny * nz)
		br := bufio.NewReaderSize(f, 1<<20)
		if err := readPlain(br, c, word); err != nil {
			return nil, err
		}
	} else {
		if err := loadRegion(f, dataStart, c, *r, word); err != nil {
			return nil, err
		}
	}

	log.Info("cube", "loaded cube", map[string]any{"nx": c.Nx, "ny": c.Ny, "nz": c.Nz, "type": int(dt)})
	return c, nil
}

// readHeader reads whole 2880-byte blocks until an END record is seen
// and wraps them in a *header.Header, per DataCube_load's header loop.
func readHeader(r io.Reader) (*header.Header, error) {
	buf := make([]byte, 0, header.BlockSize)
	block := make([]byte, header.BlockSize)
	for {
		if _, err := io.ReadFull(r, block); err != nil {
			return nil, cubeerr.Wrapf(cubeerr.ErrFileAccess, "unexpected end of file while reading header: %v", err)
		}
		buf = append(buf, block...)
		if len(buf) == header.BlockSize && string(buf[:6]) != "SIMPLE" {
			return nil, cubeerr.Wrapf(cubeerr.ErrFormat, "file does not appear to be FITS-subset (missing SIMPLE)")
		}
		end := false
		for off := len(buf) - header.BlockSize; off < len(buf); off += header.LineSize {
			if string(buf[off:off+3]) == "END" {
				end = true
				break
			}
		}
		if end {
			break
		}
	}
	return header.FromBytes(buf), nil
}

func readPlain(r io.Reader, c *Cube, word int) error {
	raw := make([]byte, word)
	n := c.Size()
	for i := 0; i < n; i++ {
		if _, err := io.ReadFull(r, raw); err != nil {
			return cubeerr.Wrapf(cubeerr.ErrFileAccess, "unexpected end of file while reading data: %v", err)
		}
		c.setRawBigEndian(i, raw)
	}
	return nil
}

// loadRegion reads only r's sub-cube from f, seeking to the start of
// every row (the file is seekable, unlike a generic io.Reader), and
// rewrites the header's axis/CRPIX keywords to describe the cropped
// cube, per DataCube_load's region-loading branch.
func loadRegion(f *os.File, dataStart int64, c *Cube, r region.Region, word int) error {
	r = r.Clip(c.Nx, c.Ny, c.Nz)
	rnx, rny, rnz := r.Size()
	fullNx, fullNy := c.Nx, c.Ny

	c.Nx, c.Ny, c.Nz = rnx, rny, rnz
	c.alloc(rnx * rny * rnz)

	rowBuf := make([]byte, rnx*word)
	i := 0
	for z := r.ZMin; z <= r.ZMax; z++ {
		for y := r.YMin; y <= r.YMax; y++ {
			rowIndex := int64(y)*int64(fullNx) + int64(z)*int64(fullNx)*int64(fullNy) + int64(r.XMin)
			if _, err := f.Seek(dataStart+rowIndex*int64(word), io.SeekStart); err != nil {
				return cubeerr.Wrapf(cubeerr.ErrFileAccess, "seeking within region data: %v", err)
			}
			if _, err := io.ReadFull(f, rowBuf); err != nil {
				return cubeerr.Wrapf(cubeerr.ErrFileAccess, "unexpected end of file while reading region data: %v", err)
			}
			for x := 0; x < rnx; x++ {
				c.setRawBigEndian(i, rowBuf[x*word:(x+1)*word])
				i++
			}
		}
	}

	h := c.Header
	if h.Check("NAXIS1") != 0 {
		h.PutInt("NAXIS1", int64(rnx))
	}
	if h.Check("NAXIS2") != 0 {
		h.PutInt("NAXIS2", int64(rny))
	}
	if h.Check("NAXIS3") != 0 {
		h.PutInt("NAXIS3", int64(rnz))
	}
	if h.Check("CRPIX1") != 0 {
		h.PutFloat("CRPIX1", h.GetFloat("CRPIX1")-float64(r.XMin))
	}
	if h.Check("CRPIX2") != 0 {
		h.PutFloat("CRPIX2", h.GetFloat("CRPIX2")-float64(r.YMin))
	}
	if h.Check("CRPIX3") != 0 {
		h.PutFloat("CRPIX3", h.GetFloat("CRPIX3")-float64(r.ZMin))
	}
	return nil
}

// setRawBigEndian decodes word raw big-endian bytes into flat index i of
// the cube's native-typed slice.
func (c *Cube) setRawBigEndian(i int, raw []byte) {
	switch c.Type {
	case Float64:
		c.f64[i] = math.Float64frombits(binary.BigEndian.Uint64(raw))
	case Float32:
		c.f32[i] = math.Float32frombits(binary.BigEndian.Uint32(raw))
	case Uint8:
		c.u8[i] = raw[0]
	case Int16:
		c.i16[i] = int16(binary.BigEndian.Uint16(raw))
	case Int32:
		c.i32[i] = int32(binary.BigEndian.Uint32(raw))
	case Int64:
		c.i64[i] = int64(binary.BigEndian.Uint64(raw))
	}
}

func (c *Cube) rawBigEndian(i int, raw []byte) {
	switch c.Type {
	case Float64:
		binary.BigEndian.PutUint64(raw, math.Float64bits(c.f64[i]))
	case Float32:
		binary.BigEndian.PutUint32(raw, math.Float32bits(c.f32[i]))
	case Uint8:
		raw[0] = c.u8[i]
	case Int16:
		binary.BigEndian.PutUint16(raw, uint16(c.i16[i]))
	case Int32:
		binary.BigEndian.PutUint32(raw, uint32(c.i32[i]))
	case Int64:
		binary.BigEndian.PutUint64(raw, uint64(c.i64[i]))
	}
}

// Save writes c to path as a FITS-subset file. If overwrite is false and
// the file already exists, Save fails with cubeerr.ErrFileAccess.
func (c *Cube) Save(path string, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return cubeerr.Wrapf(cubeerr.ErrFileAccess, "creating %q: %v", path, err)
	}
	defer f.Close()
	bw := bufio.NewWriter(f)

	if _, err := bw.Write(c.Header.Bytes()); err != nil {
		return cubeerr.Wrapf(cubeerr.ErrFileAccess, "writing header: %v", err)
	}

	word := wordSize(c.Type)
	raw := make([]byte, word)
	n := c.Size()
	for i := 0; i < n; i++ {
		c.rawBigEndian(i, raw)
		if _, err := bw.Write(raw); err != nil {
			return cubeerr.Wrapf(cubeerr.ErrFileAccess, "writing data: %v", err)
		}
	}

	if pad := (header.BlockSize - (word*n)%header.BlockSize) % header.BlockSize; pad > 0 {
		if _, err := bw.Write(make([]byte, pad)); err != nil {
			return cubeerr.Wrapf(cubeerr.ErrFileAccess, "padding output: %v", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return cubeerr.Wrapf(cubeerr.ErrFileAccess, "flushing output: %v", err)
	}
	return nil
}
