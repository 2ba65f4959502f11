package ufs_test

import (
	"github.com/nechda/cooptools/ufs"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("FS", func() {
	var fs *ufs.FS

	BeforeEach(func() {
		var err error
		fs, err = ufs.NewFS()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(fs.Catalog().Close()).To(Succeed())
	})

	// Scenario C2-A.
	It("round-trips a short write through a second read-only descriptor", func() {
		fd := fs.Open("f", ufs.Create|ufs.Write)
		Expect(fd).To(BeNumerically(">=", 0))
		Expect(fs.Write(fd, []byte("hello"))).To(Equal(5))
		Expect(fs.Close(fd)).To(Equal(0))

		fd2 := fs.Open("f", ufs.Read)
		Expect(fd2).To(BeNumerically(">=", 0))
		buf := make([]byte, 5)
		Expect(fs.Read(fd2, buf)).To(Equal(5))
		Expect(string(buf)).To(Equal("hello"))
	})

	// Scenario C2-B: cross a block boundary (blockSize == 512).
	It("chains blocks across a 513-byte write and reads it back intact", func() {
		data := make([]byte, 513)
		for i := range data {
			data[i] = byte(i % 251)
		}
		fd := fs.Open("big", ufs.Create|ufs.Write)
		Expect(fs.Write(fd, data)).To(Equal(len(data)))
		Expect(fs.Close(fd)).To(Equal(0))

		fd2 := fs.Open("big", ufs.Read)
		got := make([]byte, len(data))
		Expect(fs.Read(fd2, got)).To(Equal(len(data)))
		Expect(got).To(Equal(data))
	})

	// Scenario C2-C: last writer wins per byte, independent write positions.
	It("lets two write descriptors race over the same bytes, last write wins", func() {
		fd1 := fs.Open("both", ufs.Create|ufs.Write)
		fd2 := fs.Open("both", ufs.Write)

		Expect(fs.Write(fd1, []byte("abc"))).To(Equal(3))
		Expect(fs.Write(fd2, []byte("XY"))).To(Equal(2))

		reader := fs.Open("both", ufs.Read)
		buf := make([]byte, 3)
		Expect(fs.Read(reader, buf)).To(Equal(3))
		Expect(string(buf)).To(Equal("XYc"))
	})

	// Scenario C2-D.
	It("lets write reuse a file emptied by resize(0)", func() {
		fd := fs.Open("shrink", ufs.Create|ufs.Write)
		Expect(fs.Write(fd, []byte("some bytes"))).To(Equal(10))
		Expect(fs.Resize(fd, 0)).To(Equal(0))
		Expect(fs.Write(fd, []byte("z"))).To(Equal(1))

		reader := fs.Open("shrink", ufs.Read)
		buf := make([]byte, 1)
		Expect(fs.Read(reader, buf)).To(Equal(1))
		Expect(buf).To(Equal([]byte("z")))
	})

	It("keeps two descriptors' read and write positions independent", func() {
		fd1 := fs.Open("indep", ufs.Create|ufs.Write)
		Expect(fs.Write(fd1, []byte("abcdef"))).To(Equal(6))
		Expect(fs.Close(fd1)).To(Equal(0))

		r1 := fs.Open("indep", ufs.Read)
		r2 := fs.Open("indep", ufs.Read)

		buf1 := make([]byte, 2)
		Expect(fs.Read(r1, buf1)).To(Equal(2))
		Expect(string(buf1)).To(Equal("ab"))

		buf2 := make([]byte, 4)
		Expect(fs.Read(r2, buf2)).To(Equal(4))
		Expect(string(buf2)).To(Equal("abcd"))

		Expect(fs.Read(r1, buf1)).To(Equal(2))
		Expect(string(buf1)).To(Equal("cd"))
	})

	It("keeps a ghosted file writable by the descriptor that already holds it, reclaimed on close", func() {
		fd := fs.Open("doomed", ufs.Create|ufs.Write)
		Expect(fs.Write(fd, []byte("still here"))).To(Equal(10))

		Expect(fs.Delete("doomed")).To(Equal(0))
		Expect(fs.Open("doomed", ufs.Read)).To(Equal(-1))
		Expect(fs.Errno()).To(Equal(ufs.ErrNoFile))

		Expect(fs.Write(fd, []byte(" more"))).To(Equal(5))
		Expect(fs.Close(fd)).To(Equal(0))

		// storage reclaimed: a fresh create starts from an empty file
		fresh := fs.Open("doomed", ufs.Create|ufs.Read)
		buf := make([]byte, 1)
		Expect(fs.Read(fresh, buf)).To(Equal(0))
	})

	It("shadows a deleted file with a fresh one while the old descriptor keeps addressing the ghost", func() {
		writer := fs.Open("name", ufs.Create|ufs.Write)
		Expect(fs.Write(writer, []byte("old"))).To(Equal(3))
		oldReader := fs.Open("name", ufs.Read)

		Expect(fs.Delete("name")).To(Equal(0))

		fresh := fs.Open("name", ufs.Create|ufs.Write)
		Expect(fresh).NotTo(Equal(-1))
		Expect(fs.Write(fresh, []byte("new"))).To(Equal(3))

		oldBuf := make([]byte, 3)
		Expect(fs.Read(oldReader, oldBuf)).To(Equal(3))
		Expect(string(oldBuf)).To(Equal("old"))

		freshReader := fs.Open("name", ufs.Read)
		newBuf := make([]byte, 3)
		Expect(fs.Read(freshReader, newBuf)).To(Equal(3))
		Expect(string(newBuf)).To(Equal("new"))
	})

	It("honors append semantics: every write starts at the current file size", func() {
		fd := fs.Open("app", ufs.Create|ufs.Write|ufs.Append)
		Expect(fs.Write(fd, []byte("abc"))).To(Equal(3))
		Expect(fs.Write(fd, []byte("def"))).To(Equal(3))

		reader := fs.Open("app", ufs.Read)
		buf := make([]byte, 6)
		Expect(fs.Read(reader, buf)).To(Equal(6))
		Expect(string(buf)).To(Equal("abcdef"))
	})

	It("obeys the resize law for growth and shrink", func() {
		fd := fs.Open("rs", ufs.Create|ufs.Write)
		Expect(fs.Write(fd, []byte("hello"))).To(Equal(5))

		Expect(fs.Resize(fd, 10)).To(Equal(0))
		reader := fs.Open("rs", ufs.Read)
		buf := make([]byte, 10)
		Expect(fs.Read(reader, buf)).To(Equal(10))
		Expect(string(buf[:5])).To(Equal("hello"))
		for _, b := range buf[5:] {
			Expect(b).To(Equal(byte(0)))
		}

		Expect(fs.Resize(fd, 2)).To(Equal(0))
		reader2 := fs.Open("rs", ufs.Read)
		buf2 := make([]byte, 4)
		n := fs.Read(reader2, buf2)
		Expect(n).To(Equal(2))
		Expect(string(buf2[:2])).To(Equal("he"))
	})

	It("fails write on a read-only descriptor with NO_PERMISSION", func() {
		fd := fs.Open("ro", ufs.Create|ufs.Write)
		Expect(fs.Close(fd)).To(Equal(0))

		ro := fs.Open("ro", ufs.Read)
		Expect(fs.Write(ro, []byte("x"))).To(Equal(-1))
		Expect(fs.Errno()).To(Equal(ufs.ErrNoPermission))
	})

	It("fails NULL_PTR_BUF on a nil buffer", func() {
		fd := fs.Open("nb", ufs.Create|ufs.Write)
		Expect(fs.Write(fd, nil)).To(Equal(-1))
		Expect(fs.Errno()).To(Equal(ufs.ErrNullPtrBuf))
	})

	It("fails NO_FILE opening an absent file without CREATE", func() {
		Expect(fs.Open("missing", ufs.Read)).To(Equal(-1))
		Expect(fs.Errno()).To(Equal(ufs.ErrNoFile))
	})

	It("grows a freshly created, never-written file directly via resize", func() {
		fd := fs.Open("empty", ufs.Create|ufs.Write)
		Expect(fs.Resize(fd, 600)).To(Equal(0))

		reader := fs.Open("empty", ufs.Read)
		buf := make([]byte, 600)
		Expect(fs.Read(reader, buf)).To(Equal(600))
		for _, b := range buf {
			Expect(b).To(Equal(byte(0)))
		}
	})
})
