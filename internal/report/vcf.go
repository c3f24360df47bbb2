package report

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/brentp/vcfgo"

	"github.com/dbsmedya/mitobreak/internal/reference"
)

// VCFPath returns the VCF path for an output prefix.
func VCFPath(prefix string) string {
	return prefix + ".breakpoints.vcf"
}

// DefaultContig names the contig when the reference FASTA header is empty.
const DefaultContig = "chrM"

func contigName(ref *reference.Reference) string {
	if ref.Name == "" {
		return DefaultContig
	}
	return ref.Name
}

// NewVCFHeader returns the header used for deletion calls on ref.
func NewVCFHeader(ref *reference.Reference, sample string) *vcfgo.Header {
	h := vcfgo.NewHeader()
	h.FileFormat = "4.2"
	h.Infos["SVTYPE"] = &vcfgo.Info{Id: "SVTYPE", Number: "1", Type: "String", Description: "Type of structural variant"}
	h.Infos["END"] = &vcfgo.Info{Id: "END", Number: "1", Type: "Integer", Description: "Last deleted reference base"}
	h.Infos["SUPPORT"] = &vcfgo.Info{Id: "SUPPORT", Number: "1", Type: "Integer", Description: "Read pairs supporting the breakpoint"}
	h.Contigs = append(h.Contigs, map[string]string{
		"ID":     contigName(ref),
		"length": strconv.Itoa(ref.Len()),
	})
	if sample != "" {
		h.Extras = append(h.Extras, "##sample="+sample)
	}
	return h
}

// WriteVCF writes one symbolic <DEL> record per call. POS is the reference
// base preceding the deletion, which for a deletion starting at 1 is the
// last base of the circle.
func WriteVCF(w io.Writer, ref *reference.Reference, sample string, calls []Call) error {
	h := NewVCFHeader(ref, sample)
	vw, err := vcfgo.NewWriter(w, h)
	if err != nil {
		return fmt.Errorf("failed to write VCF header: %w", err)
	}

	for i, c := range calls {
		pos := c.Start - 1
		if pos < 1 {
			pos = ref.Len()
		}
		info := fmt.Sprintf("SVTYPE=DEL;END=%d;SUPPORT=%d", c.End, c.Count)
		vw.WriteVariant(&vcfgo.Variant{
			Chromosome: contigName(ref),
			Pos:        uint64(pos),
			Id_:        fmt.Sprintf("del%d", i+1),
			Reference:  ref.Seq[pos-1 : pos],
			Alternate:  []string{"<DEL>"},
			Quality:    float32(c.Count),
			Filter:     "PASS",
			Info_:      vcfgo.NewInfoByte([]byte(info), h),
			Header:     h,
		})
	}
	return nil
}

// VCFSink writes calls as VCF to Path.
type VCFSink struct {
	Path      string
	Reference *reference.Reference
}

// WriteCalls implements Sink.
func (s *VCFSink) WriteCalls(_ context.Context, sample string, calls []Call) error {
	return writeFile(s.Path, func(w io.Writer) error {
		return WriteVCF(w, s.Reference, sample, calls)
	})
}
