package hgsave_test

import (
	"bytes"

	"github.com/bsm/hgsave"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Writer", func() {
	var buf *bytes.Buffer
	var subject *hgsave.Writer

	BeforeEach(func() {
		buf = new(bytes.Buffer)
		subject = hgsave.NewWriter(buf, nil)
	})

	AfterEach(func() {
		_ = subject.Close()
	})

	It("should write empty", func() {
		Expect(subject.Close()).To(Succeed())
		Expect(buf.Len()).To(Equal(0))
		Expect(subject.NumBlocks()).To(Equal(0))
	})

	It("should prevent writes after close", func() {
		Expect(subject.Close()).To(Succeed())
		_, err := subject.Write([]byte("late"))
		Expect(err).To(MatchError(`hgsave: is closed`))
		Expect(subject.Close()).To(MatchError(`hgsave: is closed`))
	})

	It("should write a single short block", func() {
		Expect(subject.Write([]byte("testdata"))).To(Equal(8))
		Expect(subject.Close()).To(Succeed())
		Expect(subject.NumBlocks()).To(Equal(1))

		headers := parseHeaders(buf.Bytes())
		Expect(headers).To(HaveLen(1))
		Expect(headers[0].Magic).To(Equal(hgsave.Magic))
		Expect(headers[0].UncompressedSize).To(Equal(uint32(8)))
		Expect(headers[0].Reserved).To(BeZero())
		Expect(buf.Bytes()[:4]).To(Equal([]byte{0xe5, 0xa1, 0xed, 0xfe}))
	})

	It("should split into fixed-size chunks", func() {
		payload := seedPayload(600000)
		Expect(subject.Write(payload)).To(Equal(600000))
		Expect(subject.NumBlocks()).To(Equal(1))
		Expect(subject.Close()).To(Succeed())
		Expect(subject.NumBlocks()).To(Equal(2))

		headers := parseHeaders(buf.Bytes())
		Expect(headers).To(HaveLen(2))
		Expect(headers[0].UncompressedSize).To(Equal(uint32(0x80000)))
		Expect(headers[1].UncompressedSize).To(Equal(uint32(600000 - 0x80000)))
		Expect(buf.Len()).To(Equal(32 + int(headers[0].CompressedSize) + int(headers[1].CompressedSize)))
	})

	It("should produce the same output for fragmented writes", func() {
		payload := seedPayload(3 * 0x80000)
		for p := payload; len(p) != 0; {
			n := 77777
			if n > len(p) {
				n = len(p)
			}
			Expect(subject.Write(p[:n])).To(Equal(n))
			p = p[n:]
		}
		Expect(subject.Close()).To(Succeed())
		Expect(subject.NumBlocks()).To(Equal(3))

		whole, err := hgsave.Compress(payload)
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.Bytes()).To(Equal(whole))
	})

	It("should write (non-compressable)", func() {
		payload := randomPayload(100000)
		Expect(subject.Write(payload)).To(Equal(100000))
		Expect(subject.Close()).To(Succeed())

		headers := parseHeaders(buf.Bytes())
		Expect(headers).To(HaveLen(1))
		Expect(headers[0].CompressedSize).To(BeNumerically(">", 100000))
		Expect(buf.Len()).To(BeNumerically("~", 100000, 1024))
	})

	It("should write (well-compressable)", func() {
		payload := bytes.Repeat([]byte("testdata"), 100000)
		Expect(subject.Write(payload)).To(Equal(800000))
		Expect(subject.Close()).To(Succeed())
		Expect(subject.NumBlocks()).To(Equal(2))
		Expect(buf.Len()).To(BeNumerically("<", 10000))
	})

	It("should honour custom chunk sizes", func() {
		subject = hgsave.NewWriter(buf, &hgsave.Options{ChunkSize: 1000})
		Expect(subject.Write(seedPayload(2500))).To(Equal(2500))
		Expect(subject.Close()).To(Succeed())
		Expect(subject.NumBlocks()).To(Equal(3))

		headers := parseHeaders(buf.Bytes())
		Expect(headers[0].UncompressedSize).To(Equal(uint32(1000)))
		Expect(headers[1].UncompressedSize).To(Equal(uint32(1000)))
		Expect(headers[2].UncompressedSize).To(Equal(uint32(500)))
	})
})
