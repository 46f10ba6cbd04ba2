package hgsave_test

import (
	"bytes"
	"io"

	"github.com/bsm/hgsave"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Reader", func() {
	var payload, container []byte
	var subject *hgsave.Reader

	// The following will seed 3 blocks:
	//
	// B0: 0x80000
	// B1: 0x80000
	// B2: 100000
	//
	BeforeEach(func() {
		var err error
		payload = seedPayload(2*0x80000 + 100000)
		container, err = hgsave.Compress(payload)
		Expect(err).NotTo(HaveOccurred())

		subject = hgsave.NewReader(bytes.NewReader(container))
	})

	AfterEach(func() {
		subject.Release()
	})

	It("should iterate blocks", func() {
		var sizes []uint32
		var plain []byte
		for subject.Next() {
			Expect(subject.Header().Magic).To(Equal(hgsave.Magic))
			sizes = append(sizes, subject.Header().UncompressedSize)
			plain = append(plain, subject.Bytes()...)
		}
		Expect(subject.Err()).NotTo(HaveOccurred())
		Expect(subject.NumBlocks()).To(Equal(3))
		Expect(sizes).To(Equal([]uint32{0x80000, 0x80000, 100000}))
		Expect(bytes.Equal(plain, payload)).To(BeTrue())
	})

	It("should read", func() {
		plain, err := io.ReadAll(subject)
		Expect(err).NotTo(HaveOccurred())
		Expect(bytes.Equal(plain, payload)).To(BeTrue())
	})

	It("should read empty containers", func() {
		subject = hgsave.NewReader(bytes.NewReader(nil))
		Expect(subject.Next()).To(BeFalse())
		Expect(subject.Err()).NotTo(HaveOccurred())

		plain, err := io.ReadAll(subject)
		Expect(err).NotTo(HaveOccurred())
		Expect(plain).To(BeEmpty())
	})

	It("should be strict about magic", func() {
		subject = hgsave.NewReader(bytes.NewReader([]byte(`{"not":"a container"}`)))
		_, err := io.ReadAll(subject)
		Expect(err).To(MatchError(hgsave.ErrBadMagic))
		Expect(err).To(MatchError(ContainSubstring("block 0 starts with 0x6f6e227b")))
	})

	It("should detect bad magic in later blocks", func() {
		tail := append(container[:len(container):len(container)], []byte("garbage, not a block")...)
		subject = hgsave.NewReader(bytes.NewReader(tail))

		n := 0
		for subject.Next() {
			n++
		}
		Expect(n).To(Equal(3))
		Expect(subject.Err()).To(MatchError(hgsave.ErrBadMagic))
	})

	It("should detect truncation", func() {
		subject = hgsave.NewReader(bytes.NewReader(container[:len(container)-1]))
		_, err := io.ReadAll(subject)
		Expect(err).To(MatchError(hgsave.ErrTruncated))
		Expect(err).To(MatchError(ContainSubstring("payload of block 2")))

		subject = hgsave.NewReader(bytes.NewReader(container[:10]))
		_, err = io.ReadAll(subject)
		Expect(err).To(MatchError(hgsave.ErrTruncated))
		Expect(err).To(MatchError(ContainSubstring("header of block 0")))
	})

	It("should detect corrupt payloads", func() {
		bad := append([]byte(nil), container...)
		// claim one more uncompressed byte than the payload yields
		bad[8]++
		subject = hgsave.NewReader(bytes.NewReader(bad))
		Expect(subject.Next()).To(BeFalse())
		Expect(subject.Err()).To(MatchError(hgsave.ErrCorrupt))
	})

	It("should not read after release", func() {
		subject.Release()
		Expect(subject.Next()).To(BeFalse())
		Expect(subject.Err()).To(MatchError("hgsave: reader was released"))
	})
})

var _ = Describe("ScanBlocks", func() {
	It("should list headers", func() {
		container, err := hgsave.Compress(seedPayload(600000))
		Expect(err).NotTo(HaveOccurred())

		headers, err := hgsave.ScanBlocks(container)
		Expect(err).NotTo(HaveOccurred())
		Expect(headers).To(Equal(parseHeaders(container)))
		Expect(headers).To(HaveLen(2))
	})

	It("should scan empty input", func() {
		headers, err := hgsave.ScanBlocks(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(headers).To(BeEmpty())
	})

	It("should reject foreign data", func() {
		_, err := hgsave.ScanBlocks([]byte("{}"))
		Expect(err).To(MatchError(hgsave.ErrBadMagic))

		_, err = hgsave.ScanBlocks([]byte(`{"plain":"json document"}`))
		Expect(err).To(MatchError(hgsave.ErrBadMagic))
	})

	It("should reject truncated containers", func() {
		container, err := hgsave.Compress([]byte("testdata"))
		Expect(err).NotTo(HaveOccurred())

		_, err = hgsave.ScanBlocks(container[:8])
		Expect(err).To(MatchError(hgsave.ErrTruncated))
		_, err = hgsave.ScanBlocks(container[:len(container)-1])
		Expect(err).To(MatchError(hgsave.ErrTruncated))
	})
})
