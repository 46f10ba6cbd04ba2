package tree_test

import (
	"github.com/bsm/hgsave/tree"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Value", func() {
	var subject tree.Value

	BeforeEach(func() {
		subject = tree.ObjectValue(
			tree.Member{Key: "name", Value: tree.StringValue("Explorer")},
			tree.Member{Key: "units", Value: tree.IntValue(1200)},
			tree.Member{Key: "items", Value: tree.ArrayValue(tree.BoolValue(true), tree.NullValue())},
		)
	})

	It("should report kinds", func() {
		Expect(subject.Kind()).To(Equal(tree.Object))
		Expect(subject.Kind().String()).To(Equal("object"))
		Expect(tree.Value{}.IsNull()).To(BeTrue())
		Expect(tree.FloatValue(0.5).Number().String()).To(Equal("0.5"))
		Expect(tree.Kind(9).String()).To(Equal("kind(9)"))
	})

	It("should access members", func() {
		Expect(subject.Len()).To(Equal(3))
		Expect(subject.Get("name").Str()).To(Equal("Explorer"))
		Expect(subject.Get("units").Number().Int64()).To(Equal(int64(1200)))
		Expect(subject.Get("missing")).To(BeNil())
		Expect(subject.Get("items").Index(0).Bool()).To(BeTrue())
		Expect(subject.Get("items").Index(2)).To(BeNil())
	})

	It("should set members in place", func() {
		subject.Set("units", tree.IntValue(5))
		subject.Set("extra", tree.StringValue("x"))
		Expect(subject.String()).To(Equal(`{"name":"Explorer","units":5,"items":[true,null],"extra":"x"}`))

		Expect(subject.Delete("name")).To(BeTrue())
		Expect(subject.Delete("name")).To(BeFalse())
		Expect(subject.String()).To(Equal(`{"units":5,"items":[true,null],"extra":"x"}`))
	})

	It("should append to arrays", func() {
		subject.Get("items").Append(tree.StringValue("new"))
		Expect(subject.Get("items").Len()).To(Equal(3))
	})

	It("should collapse duplicate keys on construction", func() {
		v := tree.ObjectValue(
			tree.Member{Key: "k", Value: tree.IntValue(1)},
			tree.Member{Key: "j", Value: tree.IntValue(2)},
			tree.Member{Key: "k", Value: tree.IntValue(3)},
		)
		Expect(v.String()).To(Equal(`{"k":3,"j":2}`))
	})

	It("should compare structurally", func() {
		same := tree.ObjectValue(
			tree.Member{Key: "name", Value: tree.StringValue("Explorer")},
			tree.Member{Key: "units", Value: tree.IntValue(1200)},
			tree.Member{Key: "items", Value: tree.ArrayValue(tree.BoolValue(true), tree.NullValue())},
		)
		Expect(subject.Equal(same)).To(BeTrue())

		same.Set("units", tree.IntValue(1201))
		Expect(subject.Equal(same)).To(BeFalse())
		Expect(tree.StringValue("1").Equal(tree.IntValue(1))).To(BeFalse())
		Expect(tree.ArrayValue().Equal(tree.ObjectValue())).To(BeFalse())
	})
})

var _ = Describe("Pointer", func() {
	var subject tree.Value

	BeforeEach(func() {
		var err error
		subject, err = tree.Parse(`{"a":{"b/c":[10,20,{"d~e":true}]},"":"empty"}`)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should split", func() {
		Expect(tree.SplitPointer("")).To(BeEmpty())
		Expect(tree.SplitPointer("/a/b~1c/2")).To(Equal([]string{"a", "b/c", "2"}))
		Expect(tree.SplitPointer("/~01")).To(Equal([]string{"~1"}))

		_, err := tree.SplitPointer("a")
		Expect(err).To(MatchError(ContainSubstring("must be empty or start with '/'")))
	})

	It("should lookup", func() {
		v, err := subject.Lookup("")
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Equal(subject)).To(BeTrue())

		v, err = subject.Lookup("/a/b~1c/1")
		Expect(err).NotTo(HaveOccurred())
		Expect(v.String()).To(Equal("20"))

		v, err = subject.Lookup("/a/b~1c/2/d~0e")
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Bool()).To(BeTrue())

		v, err = subject.Lookup("/")
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Str()).To(Equal("empty"))
	})

	It("should fail on unresolved pointers", func() {
		_, err := subject.Lookup("/a/x")
		Expect(err).To(MatchError(tree.ErrNotFound))
		Expect(err).To(MatchError(`tree: pointer not found: "/a/x"`))

		_, err = subject.Lookup("/a/b~1c/3")
		Expect(err).To(MatchError(tree.ErrNotFound))
		_, err = subject.Lookup("/a/b~1c/01")
		Expect(err).To(MatchError(tree.ErrNotFound))
		_, err = subject.Lookup("/a/b~1c/0/x")
		Expect(err).To(MatchError(tree.ErrNotFound))
	})

	It("should replace", func() {
		Expect(subject.Replace("/a/b~1c/0", tree.StringValue("ten"))).To(Succeed())
		Expect(subject.Replace("/a/new", tree.IntValue(1))).To(Succeed())
		Expect(subject.String()).To(Equal(`{"a":{"b/c":["ten",20,{"d~e":true}],"new":1},"":"empty"}`))

		Expect(subject.Replace("/a/b~1c/9", tree.NullValue())).To(MatchError(tree.ErrNotFound))
		Expect(subject.Replace("/x/y", tree.NullValue())).To(MatchError(tree.ErrNotFound))

		Expect(subject.Replace("", tree.IntValue(7))).To(Succeed())
		Expect(subject.String()).To(Equal("7"))
	})
})
